package persona

// GenerationRequest carries the marketing context a persona batch is built from.
type GenerationRequest struct {
	ProductPositioning string   `json:"product_positioning"`
	Industry           string   `json:"industry"`
	TargetRegion       string   `json:"target_region"`
	ProductCategory    string   `json:"product_category"`
	SurveyData         string   `json:"survey_data,omitempty"`
	ReviewData         string   `json:"review_data,omitempty"`
	UploadedFileIDs    []string `json:"uploaded_file_ids,omitempty"`
}

// Context returns the request as the free-form map the refinement prompt
// embeds as "original context".
func (r GenerationRequest) Context() map[string]any {
	ctx := map[string]any{
		"product_positioning": r.ProductPositioning,
		"industry":            r.Industry,
		"target_region":       r.TargetRegion,
		"product_category":    r.ProductCategory,
	}
	if r.SurveyData != "" {
		ctx["survey_data"] = r.SurveyData
	}
	if r.ReviewData != "" {
		ctx["review_data"] = r.ReviewData
	}
	return ctx
}
