package model

// Method identifies which fallback strategy produced a target's files
type Method string

const (
	// MethodAgentDownload means the browser saved the file itself after
	// the agent clicked the download affordance.
	MethodAgentDownload Method = "agent-download"

	// MethodDirectFetch means an observed PDF URL was fetched over HTTP.
	MethodDirectFetch Method = "direct-fetch"
)

// TargetReport is the per-target outcome reported to the operator
type TargetReport struct {
	Target    DownloadTarget
	Succeeded bool
	Method    Method           // Set only on success
	Files     []DownloadResult // Files written for this target
	Attempts  []AttemptFailure // Rejected links, in attempt order
	Reason    string           // Set only on failure
}
