package dto

// IngestRequestDTO triggers the PDF ingestion pipeline. The PDF must be
// reachable by URL; file upload/object storage is the caller's problem.
type IngestRequestDTO struct {
	PdfURL      string `json:"pdf_url" binding:"required,url"`
	ContestHint string `json:"contest_hint"`
	OwnerID     string `json:"owner_id" binding:"required"`
}

// IngestSummaryDTO reports the outcome of one ingest call.
// SavedCount + FailedCount always equals ExtractedCount.
type IngestSummaryDTO struct {
	BatchID        string `json:"batch_id"`
	ContestID      uint   `json:"contest_id"`
	ExtractedCount int    `json:"extracted_count"`
	SavedCount     int    `json:"saved_count"`
	FailedCount    int    `json:"failed_count"`
}
