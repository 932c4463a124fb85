package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/errors"
	"github.com/vango-dev/dropzone/pkg/upload"
	"github.com/vango-dev/dropzone/pkg/widget"
)

func checkCmd(load loadFunc) *cobra.Command {
	var sniff bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate local files the way the upload form would",
		Long: `Run each file through the upload widget's validation and preview
decode, with the declared type taken from the file extension as a browser
would. Rejected files print the exact message the form would show.

With --sniff, accepted files are also checked by content the way the
submit endpoint does.

Examples:
  dropzone check photo.jpg
  dropzone check --sniff scans/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			rules := widget.DefaultRules()
			rules.MaxSize = cfg.MaxFileSize()

			checker := &fileChecker{
				rules:   rules,
				sniff:   sniff,
				out:     cmd.OutOrStdout(),
				timeout: 30 * time.Second,
			}
			return checker.run(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVar(&sniff, "sniff", false, "Also verify file content is JPEG or PNG")

	return cmd
}

type fileChecker struct {
	rules   widget.Rules
	sniff   bool
	out     io.Writer
	timeout time.Duration
}

func (c *fileChecker) run(ctx context.Context, paths []string) error {
	rejected := 0
	for _, path := range paths {
		f, err := openLocalFile(path)
		if err != nil {
			return errors.New("DZ302").WithDetail(path).Wrap(err)
		}

		if msg := c.check(ctx, f); msg != "" {
			failure(c.out, "%s: %s", path, msg)
			rejected++
			continue
		}
		success(c.out, "%s (%s, %d bytes)", path, f.mimeType, f.size)
	}

	if rejected > 0 {
		return errors.New("DZ303").
			WithDetail(fmt.Sprintf("%d of %d files rejected", rejected, len(paths)))
	}
	return nil
}

// check runs f through a headless widget and returns the message the
// form would show, or "" when the file is accepted.
func (c *fileChecker) check(ctx context.Context, f *localFile) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	callbacks := make(chan func(), 1)
	w := widget.New(
		widget.DispatchFunc(func(fn func()) { callbacks <- fn }),
		widget.WithRules(c.rules),
		widget.WithContext(ctx),
	)
	defer w.Close()

	w.HandleFile(f)
	if w.State().Phase() == widget.PhaseDecoding {
		select {
		case fn := <-callbacks:
			fn()
		case <-ctx.Done():
			return widget.MsgUnreadable
		}
	}

	state := w.State()
	if state.ErrorMessage != "" {
		return state.ErrorMessage
	}

	if c.sniff {
		if err := sniffImage(f); err != nil {
			return widget.MsgInvalidType
		}
	}
	return ""
}

func sniffImage(f *localFile) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// Sniffing only needs the first bytes.
	head, err := io.ReadAll(io.LimitReader(rc, 3072))
	if err != nil {
		return err
	}
	_, err = upload.DetectImage(head)
	return err
}

// localFile is a widget.FileHandle for a file on disk. Its type is the one
// a browser would declare from the extension.
type localFile struct {
	path     string
	size     int64
	mimeType string
}

func openLocalFile(path string) (*localFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &localFile{
		path:     path,
		size:     info.Size(),
		mimeType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}

func (f *localFile) Name() string     { return filepath.Base(f.path) }
func (f *localFile) Size() int64      { return f.size }
func (f *localFile) MimeType() string { return f.mimeType }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
