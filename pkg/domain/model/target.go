package model

// DownloadTarget represents one listing page URL to process
type DownloadTarget struct {
	URL     string // Listing page URL
	DestDir string // Directory where downloaded files are written
}

// DocumentPhrases are the labels that typically mark the document
// download affordance on a listing page. Used both in the agent
// instruction and by the static page scanner.
var DocumentPhrases = []string{
	"Offering Memorandum",
	"Flyer",
	"Brochure",
	"Marketing Package",
	"View Package",
	"Download Brochure",
}
