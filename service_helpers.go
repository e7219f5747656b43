package main

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

var acceptedJobClasses = map[string]bool{
	"SummarizeCaptureJob": true,
	"GoWorker":            true,
}

type sidekiqJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
}

// captureID reads the first job argument.
func (j sidekiqJob) captureID() (int64, error) {
	if len(j.Args) == 0 {
		return 0, errors.New("job has no args")
	}
	return parseInt64(j.Args[0])
}

// parseInt64 extracts an int64 from a Sidekiq payload argument that may be encoded
// either as a JSON number or as a quoted string.
func parseInt64(raw json.RawMessage) (int64, error) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return 0, errors.New("empty string")
		}
		v, err := strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse %q", asString)
		}
		return v, nil
	}

	return 0, errors.Errorf("unsupported arg: %s", string(raw))
}
