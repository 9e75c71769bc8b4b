// Package summary renders the plain intake summary PDF. Unlike the final
// certificate this path takes no template: the layout is programmatic, a
// fixed label column and value column walked top to bottom.
package summary

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
)

const (
	pageBottom = 790 // content below this starts a new page
	topMargin  = 52
	labelX     = 50
	valueX     = 200
	lineStep   = 15
	sectionGap = 20
)

type row struct {
	label string
	value string
}

type section struct {
	title string
	rows  []row
}

// addRow appends a label/value row, omitting empty values entirely rather
// than rendering blank rows.
func (s *section) addRow(label, value string) {
	if value == "" {
		return
	}
	s.rows = append(s.rows, row{label: label, value: value})
}

// sectionsFrom flattens the intake payload into the fixed section layout
// of the summary document.
func sectionsFrom(data map[string]any) []section {
	get := func(path string) string { return intake.ResolveString(data, path) }

	owner := section{title: "Owner Details"}
	if first := get("owner.firstName"); first != "" {
		name := first
		if last := get("owner.lastName"); last != "" {
			name += " " + last
		}
		owner.addRow("Name", name)
	}
	if house := get("owner.houseNameNumber"); house != "" {
		owner.addRow("Address", fmt.Sprintf("%s %s, %s, %s",
			house, get("owner.street"), get("owner.townCity"), get("owner.postalCode")))
	}
	owner.addRow("Country", get("owner.country"))
	owner.addRow("Phone", get("owner.phone"))
	owner.addRow("Email", get("owner.email"))

	transport := section{title: "Transport"}
	transport.addRow("Transported By", transportLabel(get("transport.transportedBy")))
	transport.addRow("Carrier Name", get("transport.carrierName"))

	pet := section{title: "Pet Information"}
	pet.addRow("Name", get("pet.name"))
	pet.addRow("Species", get("pet.species"))
	breed := get("pet.breed")
	if breed == "Other" {
		if other := get("pet.breedOther"); other != "" {
			breed = other
		}
	}
	pet.addRow("Breed", breed)
	pet.addRow("Date of Birth", get("pet.dateOfBirth"))
	pet.addRow("Colour", get("pet.colour"))
	pet.addRow("Sex", get("pet.sex"))
	pet.addRow("Neutered", get("pet.neutered"))
	pet.addRow("Microchip", get("pet.microchipNumber"))
	pet.addRow("Vaccines Up to Date", get("pet.routineVaccines"))

	travel := section{title: "Travel Information"}
	means := get("travel.meansOfTravel")
	if means == "car_ferry" {
		means = "Car / Ferry"
	}
	travel.addRow("Means", means)
	travel.addRow("Entry Date", get("travel.dateOfEntry"))
	travel.addRow("First Country", get("travel.firstCountry"))
	travel.addRow("Final Destination", get("travel.finalCountry"))
	travel.addRow("Tapeworm Required", get("travel.tapewormRequired"))
	travel.addRow("Returning < 5 days", get("travel.returningWithinFiveDays"))
	if get("travel.returningWithinFiveDays") == "no" {
		travel.addRow("Returning < 120 days", get("travel.returningWithin120Days"))
	}

	rabies := section{title: "Rabies Vaccination"}
	rabies.addRow("Date", get("rabies.vaccinationDate"))
	rabies.addRow("Vaccine", get("rabies.vaccineName"))
	rabies.addRow("Manufacturer", get("rabies.manufacturer"))
	rabies.addRow("Batch", get("rabies.batchNumber"))
	rabies.addRow("Valid From", get("rabies.validFrom"))
	rabies.addRow("Valid To", get("rabies.validTo"))

	declaration := section{title: "Declaration"}
	declaration.addRow("Signature", get("declaration.signature"))
	declaration.addRow("Date", get("declaration.date"))

	return []section{owner, transport, pet, travel, rabies, declaration}
}

func transportLabel(v string) string {
	switch v {
	case "owner":
		return "Owner"
	case "authorised":
		return "Authorised Person"
	case "carrier":
		return "Carrier"
	default:
		return ""
	}
}

// Render produces the intake summary PDF for a submission. Content that
// overflows a page continues on the next one.
func Render(sub *model.Submission) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()

	y := float64(topMargin)
	newLine := func(step float64) {
		y += step
		if y > pageBottom {
			pdf.AddPage()
			y = topMargin
		}
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(labelX, y, "Animal Health Certificate - Intake Summary")

	newLine(12)
	pdf.SetTextColor(102, 102, 102)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(labelX, y, "Submission Date: "+sub.CreatedAt.Format("02/01/2006"))
	pdf.SetTextColor(0, 0, 0)

	for _, sec := range sectionsFrom(sub.Data) {
		newLine(sectionGap)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(labelX, y, sec.title)
		newLine(lineStep)

		pdf.SetFont("Helvetica", "", 10)
		for _, r := range sec.rows {
			pdf.Text(labelX, y, r.label+":")
			pdf.Text(valueX, y, r.value)
			newLine(lineStep)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render intake summary: %w", err)
	}
	return buf.Bytes(), nil
}
