package dto

import "time"

// CostingPolicyRequest body para PUT /api/settings/costing-policy.
type CostingPolicyRequest struct {
	Policy string `json:"policy" validate:"required"`
}

// CostingPolicyResponse política vigente. Defaulted indica que la empresa no la configuró.
type CostingPolicyResponse struct {
	Policy    string     `json:"policy"`
	Defaulted bool       `json:"defaulted,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
