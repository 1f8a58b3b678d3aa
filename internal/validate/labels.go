package validate

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var defaultPrinter = message.NewPrinter(language.English)

// keywordOf returns the failing keyword name for a validation error leaf,
// taken from the last segment of its keyword path.
func keywordOf(kind jsonschema.ErrorKind) string {
	path := kind.KeywordPath()
	if len(path) == 0 {
		return "unknown"
	}
	return path[len(path)-1]
}

// label produces a short human summary of a validation failure, used as
// the CLI's inline label under the offending span. The mapping mirrors
// the keyword-to-phrase table jvl's validation engine has always used;
// keywords without a specific phrase fall back to a generic one built
// from the keyword name itself.
func label(keyword string, kind jsonschema.ErrorKind) string {
	switch keyword {
	case "type":
		return fmt.Sprintf("wrong type: %s", kind.LocalizedString(defaultPrinter))
	case "required":
		return "required property missing here"
	case "enum":
		return "value not in allowed set"
	case "const":
		return "value doesn't match expected constant"
	case "pattern":
		return "value doesn't match pattern"
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		return "value out of range"
	case "minLength", "maxLength":
		return "string length out of range"
	case "minItems", "maxItems":
		return "array length out of range"
	case "minProperties", "maxProperties":
		return "property count out of range"
	case "multipleOf":
		return "value is not a valid multiple"
	case "uniqueItems":
		return "array has duplicate items"
	case "additionalProperties", "unevaluatedProperties":
		return "unexpected property"
	case "additionalItems", "unevaluatedItems":
		return "unexpected item"
	case "anyOf", "oneOf":
		return "no matching schema"
	case "not":
		return "value is disallowed"
	case "false":
		return "no value allowed here"
	case "format":
		return "value doesn't match expected format"
	case "contains":
		return "no matching item found"
	case "propertyNames":
		return "invalid property name"
	case "contentEncoding", "contentMediaType":
		return "invalid content encoding"
	default:
		return fmt.Sprintf("%s validation failed", keyword)
	}
}

// help produces a longer remediation hint for a validation failure, or ""
// when the message is already self-explanatory.
func help(keyword string) string {
	switch keyword {
	case "required":
		return "Add the missing property to this object."
	case "additionalProperties", "unevaluatedProperties":
		return "Remove the property, or check for typos in the property name."
	case "additionalItems", "unevaluatedItems":
		return "Remove the extra items, or update the schema to allow more."
	case "anyOf":
		return "The value must match at least one of the listed schemas."
	case "oneOf":
		return "The value must match exactly one of the listed schemas."
	case "not":
		return "The value is explicitly disallowed by a 'not' constraint in the schema."
	case "false":
		return "This location does not allow any value."
	case "propertyNames":
		return "One or more property names are invalid."
	default:
		return ""
	}
}

func schemaPathOf(kind jsonschema.ErrorKind) string {
	return "/" + strings.Join(kind.KeywordPath(), "/")
}
