package helpers

import (
	"errors"
	"net/url"
	"strconv"
)

// QueryInt parses an integer query parameter out of a URL. The URL may be
// relative ("?page=3" or "/school-list?page=3").
func QueryInt(rawURL string, param string) (int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	value := u.Query().Get(param)
	if value == "" {
		return 0, errors.New("query parameter not found: " + param)
	}
	return strconv.Atoi(value)
}
