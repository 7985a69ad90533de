package invoke

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"conduit/internal/registry/models"
	dErrors "conduit/pkg/domain-errors"
)

// placeholderPattern matches {name} path placeholders.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Build constructs an outbound request from an endpoint template and a
// parameter map. Declared parameters are placed per their location; extra
// parameters that match nothing are ignored for forward compatibility.
func Build(baseURL string, ep *models.Endpoint, params map[string]any) (*Request, error) {
	if ep == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "endpoint template is required")
	}

	path := ep.PathTemplate
	query := url.Values{}
	header := http.Header{}

	for _, def := range ep.Parameters {
		raw, present := params[def.Name]
		if !present {
			if def.Required {
				return nil, missingParameter(def.Name)
			}
			continue
		}
		value, err := stringify(raw)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "parameter "+def.Name+" is not representable")
		}

		switch def.Location {
		case models.LocationPath:
			path = strings.ReplaceAll(path, "{"+def.Name+"}", url.PathEscape(value))
		case models.LocationQuery:
			query.Set(def.Name, value)
		case models.LocationHeader:
			header.Set(def.Name, value)
		default:
			return nil, dErrors.New(dErrors.CodeInvalidInput, "parameter "+def.Name+" has unknown location "+string(def.Location))
		}
	}

	// A placeholder still present after substitution means a path parameter
	// was neither supplied nor declared with a value.
	if m := placeholderPattern.FindStringSubmatch(path); m != nil {
		return nil, missingParameter(m[1])
	}

	// The path already contains percent-escaped parameter values, so the full
	// URL is assembled as a string and re-parsed; assigning URL.Path directly
	// would escape the escapes.
	full, err := url.Parse(strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidURL, "base URL is not parseable")
	}
	if encoded := query.Encode(); encoded != "" {
		full.RawQuery = encoded
	}

	req := &Request{
		Method: strings.ToUpper(ep.Method),
		URL:    full,
		Header: header,
	}

	if ep.RequestBodySchema != nil {
		body, err := buildBody(ep.RequestBodySchema, params)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Body = body
			req.Header.Set("Content-Type", "application/json")
		}
	}

	return req, nil
}

// buildBody serializes the declared body properties present in params as JSON.
func buildBody(schema *models.BodySchema, params map[string]any) ([]byte, error) {
	for _, name := range schema.Required {
		if _, ok := params[name]; !ok {
			return nil, missingParameter(name)
		}
	}

	body := make(map[string]any, len(schema.Properties))
	for name := range schema.Properties {
		if v, ok := params[name]; ok {
			body[name] = v
		}
	}
	if len(body) == 0 {
		return nil, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "request body is not serializable")
	}
	return encoded, nil
}

// stringify renders a JSON-decoded parameter value for path/query/header use.
func stringify(v any) (string, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case json.Number:
		return value.String(), nil
	case nil:
		return "", nil
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

func missingParameter(name string) error {
	return dErrors.New(dErrors.CodeMissingParameter, "required parameter "+name+" is missing")
}
