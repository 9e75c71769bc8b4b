package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetport/ahc-service/internal/model"
)

func countRows(sections []section) int {
	n := 0
	for _, s := range sections {
		n += len(s.rows)
	}
	return n
}

func TestSectionsFromOmitsEmptyValues(t *testing.T) {
	data := map[string]any{
		"owner": map[string]any{"firstName": "Ada"},
	}

	sections := sectionsFrom(data)
	require.Len(t, sections, 6)
	assert.Equal(t, 1, countRows(sections))
	assert.Equal(t, "Owner Details", sections[0].title)
	assert.Equal(t, row{label: "Name", value: "Ada"}, sections[0].rows[0])
}

func TestSectionsFromEmptyPayload(t *testing.T) {
	sections := sectionsFrom(map[string]any{})
	assert.Equal(t, 0, countRows(sections))
}

func TestSectionsFromLabels(t *testing.T) {
	data := map[string]any{
		"owner": map[string]any{
			"firstName": "Ada", "lastName": "Lovelace",
			"houseNameNumber": "1", "street": "High St", "townCity": "York", "postalCode": "YO1 1AA",
		},
		"transport": map[string]any{"transportedBy": "authorised"},
		"pet":       map[string]any{"breed": "Other", "breedOther": "Lurcher"},
		"travel":    map[string]any{"meansOfTravel": "car_ferry", "returningWithinFiveDays": "no", "returningWithin120Days": "yes"},
	}

	byLabel := map[string]string{}
	for _, sec := range sectionsFrom(data) {
		for _, r := range sec.rows {
			byLabel[r.label] = r.value
		}
	}

	assert.Equal(t, "Ada Lovelace", byLabel["Name"])
	assert.Equal(t, "1 High St, York, YO1 1AA", byLabel["Address"])
	assert.Equal(t, "Authorised Person", byLabel["Transported By"])
	assert.Equal(t, "Lurcher", byLabel["Breed"])
	assert.Equal(t, "Car / Ferry", byLabel["Means"])
	assert.Equal(t, "yes", byLabel["Returning < 120 days"])
}

func TestSectionsFromSkips120DayRowWhenNotApplicable(t *testing.T) {
	data := map[string]any{
		"travel": map[string]any{"returningWithinFiveDays": "yes", "returningWithin120Days": "yes"},
	}
	for _, sec := range sectionsFrom(data) {
		for _, r := range sec.rows {
			assert.NotEqual(t, "Returning < 120 days", r.label)
		}
	}
}

func TestRenderProducesPDF(t *testing.T) {
	sub := &model.Submission{
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Data: map[string]any{
			"owner":  map[string]any{"firstName": "Ada", "email": "ada@example.com"},
			"pet":    map[string]any{"name": "Rex", "species": "Dog"},
			"travel": map[string]any{"firstCountry": "France"},
		},
	}

	out, err := Render(sub)
	require.NoError(t, err)
	assert.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderEmptySubmission(t *testing.T) {
	sub := &model.Submission{CreatedAt: time.Now(), Data: map[string]any{}}
	out, err := Render(sub)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
