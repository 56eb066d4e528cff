package dto

import "github.com/google/uuid"

// SubscriptionRequest is used for create (POST), replace (PUT) and partial
// update (PATCH). The cached owner is never accepted from clients.
type SubscriptionRequest struct {
	Active *bool      `json:"active"`
	Plan   *uuid.UUID `json:"plan"`
	App    *uuid.UUID `json:"app"`
}

func (r *SubscriptionRequest) Missing() []string {
	var missing []string
	if r.Active == nil {
		missing = append(missing, "active")
	}
	if r.Plan == nil {
		missing = append(missing, "plan")
	}
	if r.App == nil {
		missing = append(missing, "app")
	}
	return missing
}
