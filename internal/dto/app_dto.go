package dto

// AppRequest is used for create (POST), replace (PUT) and partial update
// (PATCH). Nil fields are left untouched on PATCH.
type AppRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	Type        *string `json:"type" validate:"omitempty,app_type"`
	Framework   *string `json:"framework" validate:"omitempty,framework"`
	DomainName  *string `json:"domain_name" validate:"omitempty,max=50"`
	Screenshot  *string `json:"screenshot" validate:"omitempty,url,max=200"`
}

// Missing lists the fields a full (non-partial) write requires.
func (r *AppRequest) Missing() []string {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Type == nil {
		missing = append(missing, "type")
	}
	if r.Framework == nil {
		missing = append(missing, "framework")
	}
	return missing
}
