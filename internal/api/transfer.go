package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// Validate checks that the request names at least one file and one recipient.
func (r TransferRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New(errors.ErrTransfer,
			"No files selected for transfer",
			"Pass one or more file paths")
	}
	if len(r.Recipients) == 0 {
		return errors.New(errors.ErrTransfer,
			"No recipients selected for transfer",
			"Pick at least one agent, or use --to")
	}
	return nil
}

// Transfer uploads files to the server for delivery to the recipient agents.
// Each file is sent as a repeated files[] part and each recipient as a
// repeated recipients field.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := c.httpClient.R().
		SetContext(ctx).
		SetFormDataFromValues(url.Values{"recipients": req.Recipients})

	for _, path := range req.Files {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrTransfer,
				fmt.Sprintf("Can't open %s", path),
				"Check the file exists and is readable")
		}
		defer f.Close()
		r.SetFileReader("files[]", filepath.Base(path), f)
	}

	c.logger.Info().
		Int("files", len(req.Files)).
		Strs("recipients", req.Recipients).
		Msg("starting transfer")

	resp, err := r.Post(TransferPath)
	if err != nil {
		return nil, errors.NewNetwork(TransferPath, 0, err)
	}
	if err := checkStatus(TransferPath, resp); err != nil {
		return nil, err
	}

	var out TransferResponse
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrDecode,
				"Could not decode transfer response", "")
		}
	}
	return &out, nil
}
