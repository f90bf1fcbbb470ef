package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Identity holds the lead-form contact details. Values resolve in
// order: built-in default, TOML file, individual flags.
type Identity struct {
	File    string
	Name    string
	Email   string
	Phone   string
	Company string
}

// Flags returns CLI flags for identity configuration
func (c *Identity) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "identity-file",
			Usage:       "TOML file with lead-form contact details (name, email, phone, company)",
			Destination: &c.File,
			Sources:     cli.EnvVars("OMFETCH_IDENTITY_FILE"),
		},
		&cli.StringFlag{
			Name:        "identity-name",
			Usage:       "Contact name for lead-capture forms",
			Destination: &c.Name,
			Sources:     cli.EnvVars("OMFETCH_IDENTITY_NAME"),
		},
		&cli.StringFlag{
			Name:        "identity-email",
			Usage:       "Contact email for lead-capture forms",
			Destination: &c.Email,
			Sources:     cli.EnvVars("OMFETCH_IDENTITY_EMAIL"),
		},
		&cli.StringFlag{
			Name:        "identity-phone",
			Usage:       "Contact phone for lead-capture forms",
			Destination: &c.Phone,
			Sources:     cli.EnvVars("OMFETCH_IDENTITY_PHONE"),
		},
		&cli.StringFlag{
			Name:        "identity-company",
			Usage:       "Contact company for lead-capture forms",
			Destination: &c.Company,
			Sources:     cli.EnvVars("OMFETCH_IDENTITY_COMPANY"),
		},
	}
}

// Resolve builds the effective identity record
func (c *Identity) Resolve() (model.IdentityRecord, error) {
	record := model.DefaultIdentity()

	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return record, goerr.Wrap(err, "failed to read identity file", goerr.V("path", c.File))
		}
		if err := toml.Unmarshal(data, &record); err != nil {
			return record, goerr.Wrap(err, "failed to parse identity file", goerr.V("path", c.File))
		}
	}

	if c.Name != "" {
		record.Name = c.Name
	}
	if c.Email != "" {
		record.Email = c.Email
	}
	if c.Phone != "" {
		record.Phone = c.Phone
	}
	if c.Company != "" {
		record.Company = c.Company
	}
	return record, nil
}
