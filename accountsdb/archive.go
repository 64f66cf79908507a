package accountsdb

import "io"

// ArchiveReader presents an AccountsFile's backing bytes as an io.Reader,
// for callers packaging a slot into a snapshot archive (spec.md §6). It
// is a thin adapter: the archive format itself (tar layout, manifest,
// compression of the archive as a whole) is out of scope here, same as
// the original accounts-db leaves archive packaging to a separate crate.
type ArchiveReader struct {
	data []byte
	pos  int
}

// NewArchiveReader wraps an AccountsFile's DataForArchive bytes.
func NewArchiveReader(file *AccountsFile) *ArchiveReader {
	return &ArchiveReader{data: file.DataForArchive()}
}

// Read implements io.Reader over the underlying byte range.
func (r *ArchiveReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Size returns the total number of archive bytes.
func (r *ArchiveReader) Size() int64 { return int64(len(r.data)) }
