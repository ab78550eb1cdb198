package tools_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/petasbytes/frontogether/tools"
)

func TestWriteFileSchema(t *testing.T) {
	obj := tools.WriteFileInputSchema.Object()
	if obj["type"] != "object" {
		t.Fatalf("type = %v", obj["type"])
	}
	if !reflect.DeepEqual(obj["required"], []string{"filename", "content"}) {
		t.Fatalf("required = %v", obj["required"])
	}

	b, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, name := range []string{"filename", "content"} {
		if decoded.Properties[name].Type != "string" {
			t.Fatalf("property %s type = %q", name, decoded.Properties[name].Type)
		}
	}
}

func TestPropertyMap_PlainMap(t *testing.T) {
	props := tools.WriteFileInputSchema.PropertyMap()
	if _, ok := props["filename"].(map[string]any); !ok {
		t.Fatalf("filename property missing or not an object: %#v", props["filename"])
	}
}

func TestListFilesSchema_NothingRequired(t *testing.T) {
	if len(tools.ListFilesInputSchema.Required) != 0 {
		t.Fatalf("list_files should not require fields: %v", tools.ListFilesInputSchema.Required)
	}
}
