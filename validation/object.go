// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package validation

import "fmt"

// ValidateObject evaluates schema against obj, which must be a
// map[string]any (the shape json.Unmarshal produces for a JSON object).
// path is used to prefix error messages (e.g. the parameter index).
//
// When schema.DeleteUnknownProperties is set, unknown keys are removed from
// obj in place — this mutates the caller's map, matching spec.md's
// "deleteUnknownProperties" semantics.
func ValidateObject(obj map[string]any, schema *ObjectSchema, path string) error {
	if schema == nil {
		return nil
	}
	present := 0
	for name, prop := range schema.Properties {
		propPath := fmt.Sprintf("%s.%s", path, name)
		value, ok := obj[name]
		if !ok {
			if prop.Required {
				return errMissing(propPath)
			}
			continue
		}
		present++
		if value == nil {
			if !prop.Nullable {
				return errInvalid(propPath, value, "null is not allowed here")
			}
			continue
		}
		if prop.Object != nil {
			nested, ok := value.(map[string]any)
			if !ok {
				return errInvalid(propPath, value, "expected an object")
			}
			if err := ValidateObject(nested, prop.Object, propPath); err != nil {
				return err
			}
			continue
		}
		if ok, msg := testAny(prop.Types, value, nil); !ok {
			return errInvalid(propPath, value, msg)
		}
	}

	if schema.FailOnUnexpectedParams || schema.DeleteUnknownProperties {
		for name := range obj {
			if _, known := schema.Properties[name]; known {
				continue
			}
			if schema.FailOnUnexpectedParams {
				return errUnknown(fmt.Sprintf("%s.%s", path, name))
			}
			if schema.DeleteUnknownProperties {
				delete(obj, name)
			}
		}
	}

	if schema.FailOnEmpty && present == 0 {
		return errInvalid(path, obj, "at least one property must be present")
	}
	return nil
}

// testAny runs the disjunction of type testers for a property or array
// element; tags with a fixed nested shape (filter, transaction, ...) are
// dispatched through testTag.
func testAny(types []Tag, value any, rule *Rule) (bool, string) {
	if len(types) == 0 {
		return true, ""
	}
	var msgs []string
	for _, t := range types {
		if ok, msg := testTag(t, value, rule); ok {
			return true, ""
		} else {
			msgs = append(msgs, msg)
		}
	}
	return false, joinOR(msgs)
}

func joinOR(msgs []string) string {
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += " OR "
		}
		out += m
	}
	return out
}
