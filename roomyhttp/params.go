package roomyhttp

import (
	"net/url"
	"strconv"

	"github.com/castaneai/roomy"
)

func requiredString(q url.Values, key string) (string, error) {
	v := q.Get(key)
	if v == "" {
		return "", roomy.Errorf(roomy.ErrorStatusInvalidInput, "missing parameter: %s", key)
	}
	return v, nil
}

func requiredInt(q url.Values, key string) (int, error) {
	v, err := requiredString(q, key)
	if err != nil {
		return 0, err
	}
	return parseInt(key, v)
}

// optionalInt returns 0 when the parameter is absent.
func optionalInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	return parseInt(key, v)
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, roomy.Errorf(roomy.ErrorStatusInvalidInput, "parameter %s is not a number: %q", key, v)
	}
	return n, nil
}
