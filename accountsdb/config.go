package accountsdb

// ProviderKind selects which on-disk backend an AccountsFile is created
// with. ProviderKind only governs new files (spec.md §6); existing files
// are opened with the backend's own constructor (OpenHotAccountsFile or
// NewFromFile), and this package does not pick one from the file's bytes.
type ProviderKind uint8

const (
	// ProviderAppendVec is the default: a writable, mmap-backed append log.
	ProviderAppendVec ProviderKind = iota
	// ProviderHotStorage is the sealed, immutable Tiered format.
	ProviderHotStorage
)

func (p ProviderKind) String() string {
	switch p {
	case ProviderAppendVec:
		return "AppendVec"
	case ProviderHotStorage:
		return "HotStorage"
	default:
		return "Unknown"
	}
}

// Config carries everything a caller must decide before opening a store.
type Config struct {
	// Directory holds one file per (Slot, id) account file.
	Directory string

	// Provider selects the backend used for newly created files.
	Provider ProviderKind

	// AppendVecCapacity is the mmap size reserved for a new AppendVec.
	// Writers never grow past this; append_accounts returns ok=false once
	// exhausted (spec.md §4.1).
	AppendVecCapacity uint64

	// Compression enables snappy compression of the Tiered data block.
	Compression bool

	// FileLock takes an advisory flock on a "<path>.lock" file beside each
	// AppendVec created by New, held until Close (spec.md §10.6).
	FileLock bool
}

// DefaultAppendVecCapacity matches the original accounts-db's default
// per-slot AppendVec size.
const DefaultAppendVecCapacity = 4 * 1024 * 1024

// DefaultConfig returns the engine's defaults: AppendVec provider,
// compression on, file locking on.
func DefaultConfig(directory string) Config {
	return Config{
		Directory:         directory,
		Provider:          ProviderAppendVec,
		AppendVecCapacity: DefaultAppendVecCapacity,
		Compression:       true,
		FileLock:          true,
	}
}
