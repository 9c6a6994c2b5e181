package dto

// ReportingParams narrows reports to a fiscal year.
type ReportingParams struct {
	Year *int `form:"year"`
}

// ExportParams selects the data and format of an export.
type ExportParams struct {
	UnitID string `form:"unitID"`
	Year   *int   `form:"year"`
	Format string `form:"format,default=docx" binding:"oneof=docx xlsx trezor"`
}
