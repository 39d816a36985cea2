package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawEntity
	}{
		{
			name:  "single entity",
			input: `[{"name": "Drizzt", "type": "npc"}]`,
			expected: []RawEntity{
				{Name: "Drizzt", Type: "npc", LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawEntity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"name": "Zhentarim",
		"type": "organization",
		"description": "The Black Network",
		"properties": {"leader": "Manshoon", "headquarters": "4"},
		"tags": ["villains", "faerun"]
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	row := result[0]
	assert.Equal(t, "Zhentarim", row.Name)
	assert.Equal(t, "organization", row.Type)
	assert.Equal(t, "The Black Network", row.Description)
	assert.Equal(t, map[string]any{"leader": "Manshoon", "headquarters": "4"}, row.Properties)
	assert.Equal(t, []string{"villains", "faerun"}, row.Tags)
	assert.Equal(t, 1, row.LineNum)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not an array", input: `{"name": "x"}`},
		{name: "malformed", input: `[{"name": }]`},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&JSONParser{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	input := "name,type,description,tags,race,climate\n" +
		"Bruenor,npc,King of Mithral Hall,dwarves; kings,Dwarf,\n" +
		"Icewind Dale,location,,north,,Arctic\n"

	result, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, RawEntity{
		Name:        "Bruenor",
		Type:        "npc",
		Description: "King of Mithral Hall",
		Tags:        []string{"dwarves", "kings"},
		Properties:  map[string]any{"race": "Dwarf"},
		LineNum:     2,
	}, result[0])

	assert.Equal(t, RawEntity{
		Name:       "Icewind Dale",
		Type:       "location",
		Tags:       []string{"north"},
		Properties: map[string]any{"climate": "Arctic"},
		LineNum:    3,
	}, result[1])
}

func TestCSVParser_Parse_MissingColumn(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader("name,description\nx,y\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column: type")
}

func TestCSVParser_Parse_RaggedRow(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader("name,type\nx,npc,extra\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("campaign.json"))
	assert.IsType(t, &CSVParser{}, ForFile("/tmp/npcs.CSV"))
	assert.Nil(t, ForFile("notes.md"))
}
