package draft

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
)

var ErrUnknownField = errors.New("unknown field")

// setField assigns value to the field named by path, using the JSON field
// names of the record. Paths are a flat name or group.field.
func setField(rec *models.InspectionRecord, path string, value any) error {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %q nests deeper than one group", ErrUnknownField, path)
	}

	field, ok := fieldByJSONName(reflect.ValueOf(rec).Elem(), parts[0])
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if len(parts) == 2 {
		if field.Kind() != reflect.Struct {
			return fmt.Errorf("%w: %q is not a group", ErrUnknownField, parts[0])
		}
		field, ok = fieldByJSONName(field, parts[1])
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, path)
		}
	}

	switch field.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q expects text, got %T", path, value)
		}
		field.SetString(s)
	case reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %q expects true or false, got %T", path, value)
		}
		field.SetBool(b)
	case reflect.Struct:
		return fmt.Errorf("field %q is a group, name one of its fields", path)
	default:
		return fmt.Errorf("field %q cannot be edited", path)
	}
	return nil
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
