package edgar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilingColumnsRows(t *testing.T) {
	cols := FilingColumns{
		AccessionNumber: []string{"a1", "a2", "a3"},
		FilingDate:      []string{"2024-05-01", "not-a-date", "2024-06-02"},
		ReportDate:      []string{"2024-06-15", "", ""},
		Form:            []string{"DEF 14A", "10-K", "DEFR14A"},
		PrimaryDocument: []string{"proxy.htm", "tenk.htm"}, // 比其他列短
	}

	rows := cols.rows()
	require.Len(t, rows, 2) // 无法解析日期的记录被跳过

	assert.Equal(t, "a1", rows[0].AccessionNumber)
	assert.Equal(t, "proxy.htm", rows[0].PrimaryDocument)
	assert.Equal(t, 2024, rows[0].FilingDate.Year())
	assert.Equal(t, "2024-06-15", rows[0].ReportDate)

	assert.Equal(t, "a3", rows[1].AccessionNumber)
	assert.Equal(t, DefaultPrimaryDocument, rows[1].PrimaryDocument)
}

func TestPageRefCoversYear(t *testing.T) {
	ref := PageRef{FilingFrom: "2015-01-01", FilingTo: "2019-12-31"}
	assert.True(t, ref.CoversYear(2015))
	assert.True(t, ref.CoversYear(2017))
	assert.True(t, ref.CoversYear(2019))
	assert.False(t, ref.CoversYear(2014))
	assert.False(t, ref.CoversYear(2020))

	// 日期异常时保守地认为覆盖。
	broken := PageRef{FilingFrom: "garbage", FilingTo: "2019-12-31"}
	assert.True(t, broken.CoversYear(1999))
}
