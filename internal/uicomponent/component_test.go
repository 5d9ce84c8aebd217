package uicomponent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextualInput(t *testing.T) {
	c := NewContextualInput("text", "First Name", true, "")

	assert.Equal(t, TypeContextualInput, c.Type)
	assert.Equal(t, "input_text_first_name", c.ID)
	assert.Equal(t, "Please enter first name", c.Data["placeholder"])
	assert.Equal(t, true, c.Data["required"])
	assert.Equal(t, "First Name", c.Data["label"])

	c = NewContextualInput("email", "Email", false, "you@example.com")
	assert.Equal(t, "input_email_email", c.ID)
	assert.Equal(t, "you@example.com", c.Data["placeholder"])
}

func TestNewSideboardUpdateDefaults(t *testing.T) {
	c := NewSideboardUpdate("Welcome", "Hi Ada", "", nil)

	assert.Equal(t, TypeSideboardUpdate, c.Type)
	update := c.SideboardUpdate()
	assert.Equal(t, "Welcome", update.Title)
	assert.Equal(t, "Hi Ada", update.Content)
	assert.Equal(t, DefaultContentType, update.ContentType)
	assert.Empty(t, update.Actions)
}

func TestSideboardUpdateFromDecodedJSON(t *testing.T) {
	raw := []byte(`{"type":"SIDEBOARD_UPDATE","data":{"title":"Docs","content":"# hi","content_type":"markdown","actions":[{"label":"Open"},"skip"]}}`)

	components, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, components, 1)

	update := components[0].SideboardUpdate()
	assert.Equal(t, "Docs", update.Title)
	assert.Equal(t, "markdown", update.ContentType)
	require.Len(t, update.Actions, 1)
	assert.Equal(t, "Open", update.Actions[0]["label"])
}

func TestSideboardUpdateIgnoresMistypedFields(t *testing.T) {
	c := Component{Type: TypeSideboardUpdate, Data: map[string]any{"title": 42}}
	update := c.SideboardUpdate()
	assert.Equal(t, "", update.Title)
	assert.Equal(t, "", update.Content)
}

func TestDecodeArray(t *testing.T) {
	components, err := Decode([]byte(` [{"type":"CONTEXTUAL_INPUT","id":"input_text_name","data":{}},{"type":"SIDEBOARD_UPDATE","data":{}}]`))
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "input_text_name", components[0].ID)
	assert.Equal(t, TypeSideboardUpdate, components[1].Type)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrNoComponent)

	_, err = Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestComponentJSONShape(t *testing.T) {
	data, err := json.Marshal(NewContextualInput("number", "Age", true, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CONTEXTUAL_INPUT","id":"input_number_age","data":{"input_type":"number","label":"Age","required":true,"placeholder":"Please enter age"}}`, string(data))
}
