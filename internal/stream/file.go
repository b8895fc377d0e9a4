package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roach88/brine/internal/objdef"
)

const (
	// TransactionSuffix marks a side file holding proposed edits that a
	// later commit promotes over the original.
	TransactionSuffix = ".brinenew"

	// BackupSuffix marks the original file preserved by the backup
	// promotion strategy.
	BackupSuffix = ".brineold"
)

// Strategy selects how a finished edit session is promoted.
type Strategy int

const (
	// StrategyOverwrite replaces the original file immediately.
	StrategyOverwrite Strategy = iota

	// StrategyBackup renames the original under BackupSuffix, then
	// installs the updated file in its place.
	StrategyBackup

	// StrategyTransaction installs the updated file under
	// TransactionSuffix, leaving the original untouched.
	StrategyTransaction
)

// ParseStrategy maps the command line spelling to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "overwrite":
		return StrategyOverwrite, nil
	case "backup":
		return StrategyBackup, nil
	case "transaction":
		return StrategyTransaction, nil
	default:
		return 0, fmt.Errorf("invalid write strategy %q: must be one of overwrite, backup, transaction", s)
	}
}

// Options configure a file session.
type Options struct {
	// Encoding is the IANA name of the file encoding. Empty or utf-8
	// means the bytes pass through untransformed.
	Encoding string

	// Update opens a temporary side file that receives the rewritten
	// content as the original is read.
	Update bool

	// ReadTransaction makes the session read from an existing transaction
	// file instead of the pristine original, so edits compose across
	// repeated invocations.
	ReadTransaction bool
}

// File is one open edit session: the input handle, the pending raw-line
// buffer, and (in update mode) the temporary output sink. Exactly one
// decision is expected per parsed definition: Unchanged, Update or Delete.
type File struct {
	reg   *objdef.Registry
	name  string
	in    *os.File
	lines *lineReader

	update   bool
	out      *os.File
	outEnc   io.WriteCloser // transform writer when re-encoding, nil otherwise
	outName  string
	buf      []string
	writeErr error // first failed write; the session never recovers from one
	updated  bool
	promoted bool
	closed   bool
}

// Open starts a session on name. In update mode a uuid-named temporary
// file is created next to the original so the final rename never crosses
// filesystems.
func Open(reg *objdef.Registry, name string, opts Options) (*File, error) {
	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	readName := name
	if opts.ReadTransaction {
		if _, err := os.Stat(name + TransactionSuffix); err == nil {
			readName = name + TransactionSuffix
		}
	}

	in, err := os.Open(readName)
	if err != nil {
		return nil, err
	}

	f := &File{reg: reg, name: name, in: in, update: opts.Update}

	var r io.Reader = in
	if enc != nil {
		r = transform.NewReader(in, enc.NewDecoder())
	}

	if opts.Update {
		dir, base := filepath.Dir(name), filepath.Base(name)
		f.outName = filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))
		out, err := os.OpenFile(f.outName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			in.Close()
			return nil, err
		}
		f.out = out
		if enc != nil {
			f.outEnc = transform.NewWriter(out, enc.NewEncoder())
		}
		f.lines = newLineReader(r, func(raw string) {
			f.buf = append(f.buf, raw)
		})
	} else {
		f.lines = newLineReader(r, nil)
	}

	return f, nil
}

// Name returns the original path of the session.
func (f *File) Name() string {
	return f.name
}

// Updated reports whether any Update or Delete decision was made.
func (f *File) Updated() bool {
	return f.updated
}

// Next returns the next object definition, or io.EOF when the file is
// exhausted. When a block opener is recognized the buffered text ahead of
// it is flushed, so commentary between blocks survives a later Update.
// A write failure during that flush surfaces here instead of the parsed
// definition, so a broken side file is never silently promoted.
func (f *File) Next() (*objdef.Definition, error) {
	var blockStart func()
	if f.update {
		blockStart = f.flushPrefix
	}
	d, err := f.reg.Parse(f.lines, f.name, blockStart)
	if err != nil {
		return nil, err
	}
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return d, nil
}

// Unchanged flushes the buffered block verbatim: the output stays byte
// identical to the input for this definition.
func (f *File) Unchanged() error {
	if !f.update {
		return nil
	}
	return f.flush(len(f.buf))
}

// Update discards the buffered raw text and writes the definition's
// canonical serialized form instead.
func (f *File) Update(d *objdef.Definition) error {
	if !f.update {
		return nil
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.buf = f.buf[:0]
	f.updated = true
	if err := d.Dump(f.output(), nil); err != nil {
		f.writeErr = err
		return err
	}
	return nil
}

// Delete discards the buffered raw text and writes nothing.
func (f *File) Delete() error {
	if !f.update {
		return nil
	}
	f.buf = f.buf[:0]
	f.updated = true
	return nil
}

// flushPrefix flushes everything buffered except the most recently read
// line, which belongs to the block about to be parsed. A failure here is
// recorded by flush and surfaced by the enclosing Next call.
func (f *File) flushPrefix() {
	if n := len(f.buf) - 1; n > 0 {
		_ = f.flush(n)
	}
}

// flush writes the first n buffered lines to the output sink. The first
// write failure is recorded on the session and every later flush returns
// it without touching the sink again, so partial output is never extended
// or duplicated.
func (f *File) flush(n int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	w := f.output()
	for _, raw := range f.buf[:n] {
		if _, err := io.WriteString(w, raw); err != nil {
			f.writeErr = err
			return err
		}
	}
	f.buf = append(f.buf[:0], f.buf[n:]...)
	return nil
}

func (f *File) output() io.Writer {
	if f.outEnc != nil {
		return f.outEnc
	}
	return f.out
}

// Close releases both handles. In update mode any still-buffered trailing
// text is flushed to the side file first. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var firstErr error
	if f.update {
		if err := f.flush(len(f.buf)); err != nil {
			firstErr = err
		}
		if f.outEnc != nil {
			if err := f.outEnc.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := f.out.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := f.in.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Finalize closes the session and promotes the side file per strategy.
// Only meaningful after at least one edit; callers normally check
// Updated() first.
func (f *File) Finalize(strategy Strategy) error {
	if err := f.Close(); err != nil {
		return err
	}
	switch strategy {
	case StrategyOverwrite:
		if err := os.Rename(f.outName, f.name); err != nil {
			return err
		}
	case StrategyBackup:
		if err := os.Rename(f.name, f.name+BackupSuffix); err != nil {
			return err
		}
		if err := os.Rename(f.outName, f.name); err != nil {
			return err
		}
	case StrategyTransaction:
		if err := os.Rename(f.outName, f.name+TransactionSuffix); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown write strategy %d", strategy)
	}
	f.promoted = true
	return nil
}

// Discard removes the temporary side file unless it was promoted. Safe to
// defer unconditionally; a missing file is not an error.
func (f *File) Discard() {
	if !f.update || f.promoted {
		return
	}
	_ = f.Close()
	_ = os.Remove(f.outName)
}

// resolveEncoding maps an IANA encoding name to a transformer. UTF-8 and
// the empty name resolve to nil so the common case stays a pure byte copy.
func resolveEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil || enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
