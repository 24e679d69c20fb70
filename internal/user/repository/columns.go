package repository

import (
	"fmt"
	"strings"

	"github.com/allisson/piiguard/internal/user/domain"
)

// profileColumns lists the non-sensitive profile columns in argument order.
const profileColumns = `date_of_birth, place_of_birth, gender, nationality, birth_last_name, used_last_name,
	passport_expiry, id_card_expiry, driving_license_expiry, profession, employer, marital_status,
	spouse_name, children_count, address_line1, address_line2, city, postal_code, country,
	emergency_contact_name, is_profile_complete`

func profileArgs(p *domain.Profile) []any {
	return []any{
		p.DateOfBirth, p.PlaceOfBirth, p.Gender, p.Nationality, p.BirthLastName, p.UsedLastName,
		p.PassportExpiry, p.IDCardExpiry, p.DrivingLicenseExpiry, p.Profession, p.Employer, p.MaritalStatus,
		p.SpouseName, p.ChildrenCount, p.AddressLine1, p.AddressLine2, p.City, p.PostalCode, p.Country,
		p.EmergencyContactName, p.IsProfileComplete,
	}
}

func profileDests(p *domain.Profile) []any {
	return []any{
		&p.DateOfBirth, &p.PlaceOfBirth, &p.Gender, &p.Nationality, &p.BirthLastName, &p.UsedLastName,
		&p.PassportExpiry, &p.IDCardExpiry, &p.DrivingLicenseExpiry, &p.Profession, &p.Employer, &p.MaritalStatus,
		&p.SpouseName, &p.ChildrenCount, &p.AddressLine1, &p.AddressLine2, &p.City, &p.PostalCode, &p.Country,
		&p.EmergencyContactName, &p.IsProfileComplete,
	}
}

// setClause renders "a = $n, b = $n+1, ..." (or "?" placeholders) for columns and
// returns the next placeholder index.
func setClause(columns []string, start int, placeholder func(int) string) (string, int) {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s = %s", strings.TrimSpace(col), placeholder(start+i))
	}
	return strings.Join(parts, ", "), start + len(columns)
}

// placeholders renders n placeholders starting at start.
func placeholders(start, n int, placeholder func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}

func postgresPlaceholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

func mysqlPlaceholder(int) string {
	return "?"
}

// splitColumns splits a comma separated column list.
func splitColumns(list string) []string {
	cols := strings.Split(list, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}
