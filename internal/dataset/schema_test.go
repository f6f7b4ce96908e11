package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var required = []string{"股票代码", "年份", "企业名称"}

func mustTable(t *testing.T, header []string) *Table {
	t.Helper()
	row := make([]string, len(header))
	for i := range row {
		row[i] = "1"
	}
	table, err := NewTable(header, [][]string{row})
	require.NoError(t, err)
	return table
}

func TestValidate(t *testing.T) {
	full := []string{"股票代码", "企业名称", "年份", "数字化转型指数"}
	require.NoError(t, Validate(mustTable(t, full), required))

	for _, drop := range required {
		t.Run("without "+drop, func(t *testing.T) {
			var header []string
			for _, h := range full {
				if h != drop {
					header = append(header, h)
				}
			}

			err := Validate(mustTable(t, header), required)
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, []string{drop}, schemaErr.Missing)
			assert.Contains(t, err.Error(), drop)
		})
	}

	t.Run("reports every missing column in required order", func(t *testing.T) {
		err := Validate(mustTable(t, []string{"数字化转型指数"}), required)
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, required, schemaErr.Missing)
		assert.Equal(t, "missing required columns: 股票代码, 年份, 企业名称", err.Error())
	})
}

func TestIndexColumns(t *testing.T) {
	keywords := []string{"数字化", "转型", "指数"}

	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{
			name:   "schema order is preserved",
			header: []string{"股票代码", "转型得分", "年份", "数字化转型指数"},
			want:   []string{"转型得分", "数字化转型指数"},
		},
		{
			name:   "a column matching two keywords is listed once",
			header: []string{"数字化转型指数"},
			want:   []string{"数字化转型指数"},
		},
		{
			name:   "no match",
			header: []string{"股票代码", "年份", "企业名称", "营业收入"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexColumns(mustTable(t, tt.header), keywords))
		})
	}
}

func TestResolveIndexColumn(t *testing.T) {
	keywords := []string{"数字化", "转型", "指数"}
	table := mustTable(t, []string{"股票代码", "转型得分", "数字化转型指数"})

	col, matched, err := ResolveIndexColumn(table, keywords, "")
	require.NoError(t, err)
	assert.Equal(t, "转型得分", col)
	assert.Len(t, matched, 2)

	col, _, err = ResolveIndexColumn(table, keywords, "数字化转型指数")
	require.NoError(t, err)
	assert.Equal(t, "数字化转型指数", col)

	_, _, err = ResolveIndexColumn(table, keywords, "不存在")
	assert.ErrorContains(t, err, "不存在")

	_, _, err = ResolveIndexColumn(mustTable(t, []string{"股票代码"}), keywords, "")
	assert.ErrorIs(t, err, ErrNoIndexColumns)
}
