package domain

// SummaryLength controls the target size and structure of a summary.
type SummaryLength string

const (
	SummaryLengthBrief    SummaryLength = "brief"
	SummaryLengthStandard SummaryLength = "standard"
	SummaryLengthDetailed SummaryLength = "detailed"
)

// SummaryMethod records how a summary was produced.
type SummaryMethod string

const (
	// SummaryMethodSinglePass means the whole text fit one completion call.
	SummaryMethodSinglePass SummaryMethod = "single_pass"
	// SummaryMethodMapReduce means the text was split into sections that were
	// summarized independently and then combined.
	SummaryMethodMapReduce SummaryMethod = "map_reduce"
)

// Summary is the result of summarizing a document or raw text.
type Summary struct {
	Text      string        `json:"summary"`
	Length    SummaryLength `json:"length"`
	Method    SummaryMethod `json:"method"`
	NumChunks int           `json:"num_chunks"`
}

// ValidateSummaryLength checks that length is one of the supported tiers.
func ValidateSummaryLength(length SummaryLength) error {
	switch length {
	case SummaryLengthBrief, SummaryLengthStandard, SummaryLengthDetailed:
		return nil
	}
	return ErrInvalidSummaryLength
}
