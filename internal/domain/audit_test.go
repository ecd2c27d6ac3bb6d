package domain

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit(t *testing.T) {
	t.Run("sorted by percent, full columns excluded", func(t *testing.T) {
		df := loadRecords(t, [][]string{
			{"a", "b", "c", "d"},
			{"", "1", "", "x"},
			{"1", "1", "", "x"},
			{"1", "1", "", ""},
			{"1", "1", "1", "x"},
		})

		got := Audit(df)

		assert.Equal(t, 4, got.Rows)
		assert.Equal(t, 4, got.Columns)
		assert.Equal(t, []MissingColumn{
			{Column: "c", Missing: 3, Percent: 75, Type: "string"},
			{Column: "a", Missing: 1, Percent: 25, Type: "string"},
			{Column: "d", Missing: 1, Percent: 25, Type: "string"},
		}, got.Entries)
	})

	t.Run("percent rounded to one decimal", func(t *testing.T) {
		df := loadRecords(t, [][]string{{"a"}, {""}, {"1"}, {"1"}})

		got := Audit(df)

		require.Len(t, got.Entries, 1)
		assert.Equal(t, 33.3, got.Entries[0].Percent)
	})

	t.Run("complete table", func(t *testing.T) {
		got := Audit(loadRecords(t, [][]string{{"a"}, {"1"}}))
		assert.NotNil(t, got.Entries)
		assert.Empty(t, got.Entries)
	})

	t.Run("empty table", func(t *testing.T) {
		df := loadRecords(t, [][]string{{"a"}, {""}})
		df = df.Subset([]bool{false})

		got := Audit(df)

		assert.Zero(t, got.Rows)
		assert.Empty(t, got.Entries)
	})

	t.Run("does not modify the table", func(t *testing.T) {
		df := loadRecords(t, [][]string{{"a"}, {""}})
		before := df.Records()
		Audit(df)
		assert.Equal(t, before, df.Records())
	})

	t.Run("errored frame", func(t *testing.T) {
		got := Audit(dataframe.DataFrame{})
		assert.Empty(t, got.Entries)
	})
}

func TestMissingReport_Lookup(t *testing.T) {
	r := MissingReport{Entries: []MissingColumn{{Column: "shape", Missing: 2}}}

	got, ok := r.Lookup("shape")
	assert.True(t, ok)
	assert.Equal(t, 2, got.Missing)

	_, ok = r.Lookup("duration")
	assert.False(t, ok)
}
