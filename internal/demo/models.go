package demo

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// Company owns employees. Companies are both records and subjects.
type Company struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID        int64       `bun:"id,pk,autoincrement" json:"id"`
	Name      string      `bun:"name,notnull" json:"name"`
	Employees []*Employee `bun:"rel:has-many,join:id=company_id" json:"employees,omitempty"`
}

func (c *Company) RecordID() int64     { return c.ID }
func (c *Company) SubjectType() string { return CompanyType }
func (c *Company) SubjectID() string   { return strconv.FormatInt(c.ID, 10) }

// Employee belongs to a company.
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CompanyID int64     `bun:"company_id,notnull" json:"company_id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Title     string    `bun:"title" json:"title"`
	Salary    int64     `bun:"salary" json:"salary"`
	HiredAt   time.Time `bun:"hired_at,notnull" json:"hired_at"`
	Company   *Company  `bun:"rel:belongs-to,join:company_id=id" json:"company,omitempty"`
}

func (e *Employee) RecordID() int64 { return e.ID }

// Type tags of the demo records.
const (
	CompanyType  = "Company"
	EmployeeType = "Employee"
)
