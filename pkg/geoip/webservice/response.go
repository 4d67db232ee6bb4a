package webservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/TomasB/geolookup/pkg/geoip"
)

// Me asks the web service for the address the request is sent from.
const Me = "me"

type endpoint string

const (
	endpointCountry  endpoint = "country"
	endpointCity     endpoint = "city"
	endpointInsights endpoint = "insights"
)

const queriesRemainingHeader = "X-Queries-Remaining"

// requestURI validates ip and returns the URI of the endpoint lookup. Me is passed through.
func requestURI(host string, ep endpoint, ip string) (string, error) {
	if ip != Me {
		addr, err := geoip.ParseAddress(ip)
		if err != nil {
			return "", err
		}
		ip = addr.String()
	}
	return fmt.Sprintf("https://%s/geoip/v2.1/%s/%s", host, ep, ip), nil
}

// decodeResponse turns a finished round trip into the raw record or the matching error.
func decodeResponse(status int, header http.Header, body []byte, uri string) (map[string]any, error) {
	switch {
	case status == http.StatusOK:
		return decodeSuccess(header, body, uri)
	case status >= 400 && status < 500:
		return nil, errorFor4xx(status, header.Get("Content-Type"), body, uri)
	case status >= 500 && status < 600:
		return nil, &geoip.HTTPError{
			Message:        fmt.Sprintf("received a server error (%d) for %s", status, uri),
			HTTPStatus:     status,
			URI:            uri,
			DecodedContent: string(body),
		}
	default:
		return nil, &geoip.HTTPError{
			Message:        fmt.Sprintf("received a very surprising HTTP status (%d) for %s", status, uri),
			HTTPStatus:     status,
			URI:            uri,
			DecodedContent: string(body),
		}
	}
}

func decodeSuccess(header http.Header, body []byte, uri string) (map[string]any, error) {
	record, err := decodeJSON(body)
	if err != nil {
		return nil, &geoip.Error{
			Message:    fmt.Sprintf("received a 200 response for %s but could not decode the response as JSON", uri),
			HTTPStatus: http.StatusOK,
			URI:        uri,
			Err:        err,
		}
	}

	if v := header.Get(queriesRemainingHeader); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxmind, _ := record["maxmind"].(map[string]any)
			if maxmind == nil {
				maxmind = map[string]any{}
				record["maxmind"] = maxmind
			}
			if _, ok := maxmind["queries_remaining"]; !ok {
				maxmind["queries_remaining"] = n
			}
		}
	}

	return record, nil
}

func decodeJSON(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("response body is not a JSON object")
	}
	return record, nil
}

func errorFor4xx(status int, contentType string, body []byte, uri string) error {
	httpErr := func(msg string) error {
		return &geoip.HTTPError{Message: msg, HTTPStatus: status, URI: uri, DecodedContent: string(body)}
	}

	if len(body) == 0 {
		return httpErr(fmt.Sprintf("received a %d error for %s with no body", status, uri))
	}
	if !strings.Contains(contentType, "json") {
		return httpErr(fmt.Sprintf("received a %d for %s with the following body: %s", status, uri, body))
	}

	var doc struct {
		Code  *string `json:"code"`
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return httpErr(fmt.Sprintf("received a %d error for %s but it did not include the expected JSON body: %v", status, uri, err))
	}
	if doc.Code == nil || doc.Error == nil {
		return httpErr("response contains JSON but it does not specify code or error keys")
	}

	return errorForCode(*doc.Code, *doc.Error, status, uri)
}

func errorForCode(code, msg string, status int, uri string) error {
	switch code {
	case "IP_ADDRESS_NOT_FOUND", "IP_ADDRESS_RESERVED":
		return &geoip.AddressNotFoundError{Message: msg}
	case "ACCOUNT_ID_REQUIRED", "ACCOUNT_ID_UNKNOWN", "AUTHORIZATION_INVALID",
		"LICENSE_KEY_REQUIRED", "USER_ID_REQUIRED", "USER_ID_UNKNOWN":
		return &geoip.AuthenticationError{Message: msg}
	case "INSUFFICIENT_FUNDS", "OUT_OF_QUERIES":
		return &geoip.OutOfQueriesError{Message: msg}
	case "PERMISSION_REQUIRED":
		return &geoip.PermissionRequiredError{Message: msg}
	default:
		return &geoip.InvalidRequestError{Message: msg, Code: code, HTTPStatus: status, URI: uri}
	}
}
