package domain

import "fmt"

// Client is a shop customer as the catalog knows it.
type Client struct {
	ID   string
	Name string
}

// Vehicle belongs to exactly one client.
type Vehicle struct {
	ID       string
	ClientID string
	Make     string
	Model    string
	Year     int
	Plate    string
}

// Label renders the vehicle the way it is listed on a quote:
// "make model year - plate".
func (v Vehicle) Label() string {
	return fmt.Sprintf("%s %s %d - %s", v.Make, v.Model, v.Year, v.Plate)
}

// Part is a catalog item that can be quoted by quantity.
type Part struct {
	ID   string
	Name string
}

// Service is a catalog labor item that can be quoted by hours.
type Service struct {
	ID   string
	Name string
}
