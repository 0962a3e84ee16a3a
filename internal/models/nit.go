package models

type NITSearchRequest struct {
	CompanyName string `json:"companyName"`
}

type NITResult struct {
	Success     bool   `json:"success"`
	NIT         string `json:"nit"`
	CompanyName string `json:"companyName"`
}
