// internal/model/asset.go
package model

import "time"

type Asset struct {
	ID                int       `db:"id" json:"id"`
	EmployeeFirstName string    `db:"employee_first_name" json:"employee_first_name"`
	EmployeeLastName  string    `db:"employee_last_name" json:"employee_last_name"`
	EmployeeEmail     string    `db:"employee_email" json:"employee_email"`
	CompanyName       string    `db:"company_name" json:"company_name"`
	AssetType         string    `db:"asset_type" json:"asset_type"`
	Make              string    `db:"make" json:"make"`
	Model             string    `db:"model" json:"model"`
	SerialNumber      string    `db:"serial_number" json:"serial_number"`
	AssetTag          *string   `db:"asset_tag" json:"asset_tag"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
