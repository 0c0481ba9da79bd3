package model

// AppendJob asks the single writer to record one race for the active game.
// When Rows is set the writer appends those rows as given instead, leaving
// the session untouched. The writer sends exactly one AppendOutcome on Reply.
type AppendJob struct {
	SubmissionID string
	Positions    []CompetitorID
	Rows         []RaceResult
	Reply        chan<- AppendOutcome
}

// AppendOutcome reports the row the writer appended, or why it did not.
// For a Rows job, Row is the last row appended.
type AppendOutcome struct {
	Row   RaceResult
	Table Table
	Err   error
}
