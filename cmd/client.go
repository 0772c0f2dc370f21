package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// call performs one JSON request against the configured server, acting as
// the context user. The decoded body lands in out when it is non-nil.
func call(method, path string, body interface{}, out interface{}) error {
	ctx := readContext()
	if ctx.UserID == "" {
		color.Red("missing acting user, run: sopflow context set -u <user-id>")
		return fmt.Errorf("no acting user")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ctx.Server+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", ctx.UserID)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", res.Status, apiErr.Error)
		}

		return fmt.Errorf("request failed: %s", res.Status)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func fail(err error) {
	logrus.Error(err)
}

func printField(name, value string) {
	color.Cyan("%s:", name)
	fmt.Println(value)
}
