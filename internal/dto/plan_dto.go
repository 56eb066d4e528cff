package dto

type PlanRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=20"`
	Description *string `json:"description"`
	Price       *string `json:"price" validate:"omitempty,numeric"`
}

func (r *PlanRequest) Missing() []string {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	return missing
}
