package accountsdb

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var scanFilesMeter = metrics.NewRegisteredMeter("accountsdb/store/scan_files", nil)

// Store is the multi-file driver above a single AccountsFile's scan_index:
// it owns every (slot, id) account file under Config.Directory and drives
// the startup index rebuild across all of them (§11.5).
type Store struct {
	cfg Config

	mu    sync.RWMutex
	files map[string]*storeEntry
}

// storeEntry pairs a registered file with the (slot, id) it was created
// for, so ScanIndex can recover a deterministic cross-file order without
// parsing FileName back apart.
type storeEntry struct {
	slot Slot
	id   uint64
	file *AccountsFile
}

// Open raises the process's file-descriptor headroom (best-effort, never
// fatal — §11.4) and returns an empty Store rooted at cfg.Directory. It
// does not open any file already in the directory; files are registered
// only through CreateAppendVec, CreateFile and SealTieredFile, and
// ScanIndex walks only those registered files.
func Open(cfg Config) (*Store, error) {
	if _, err := os.Stat(cfg.Directory); err != nil {
		return nil, ioError("stat", cfg.Directory, err)
	}
	if cur, err := Current(); err == nil {
		if max, err := Maximum(); err == nil && cur < max {
			if raised, err := Raise(uint64(max)); err != nil {
				log.Warn("accountsdb: failed to raise fd limit", "err", err)
			} else {
				log.Debug("accountsdb: raised fd limit", "from", cur, "to", raised)
			}
		}
	}
	return &Store{cfg: cfg, files: make(map[string]*storeEntry)}, nil
}

// path returns the on-disk path for a (slot, id) account file.
func (s *Store) path(slot Slot, id uint64) string {
	return filepath.Join(s.cfg.Directory, FileName(slot, id))
}

// CreateAppendVec creates a new writable AppendVec-backed file for
// (slot, id), registers it, and returns the façade.
func (s *Store) CreateAppendVec(slot Slot, id uint64) (*AccountsFile, error) {
	av, err := New(s.path(slot, id), s.cfg.AppendVecCapacity, s.cfg.FileLock)
	if err != nil {
		return nil, err
	}
	file := NewAppendVecFile(av)
	s.register(slot, id, file)
	return file, nil
}

// CreateFile constructs a fresh writable file for (slot, id) using
// whichever backend s.cfg.Provider names, mirroring the real
// AccountsFileProvider::new_writable (spec.md §4.4, §6;
// _examples/original_source/accounts-db/src/accounts_file.rs:308-325):
// the provider enum itself decides which concrete backend a new file
// gets, rather than every caller hard-coding CreateAppendVec.
//
// For ProviderAppendVec, accounts is optional: a nil batch creates an
// empty writable file, matching AppendVec::new's no-initial-data case.
// For ProviderHotStorage, accounts is required and non-nil, since a
// Tiered file is sealed once from a complete batch and never appended
// to afterward (spec.md §4.2) — there is no empty-then-append lifecycle
// for it to support.
func (s *Store) CreateFile(slot Slot, id uint64, accounts StorableAccounts) (*AccountsFile, []StoredAccountInfo, error) {
	switch s.cfg.Provider {
	case ProviderAppendVec:
		file, err := s.CreateAppendVec(slot, id)
		if err != nil {
			return nil, nil, err
		}
		if accounts == nil {
			return file, nil, nil
		}
		hashed := storableAccountsWithHashesFor(accounts)
		infos, ok, err := file.AppendAccounts(hashed, 0)
		if err != nil {
			return file, nil, err
		}
		if !ok {
			return file, nil, ErrOffsetOutOfRange
		}
		return file, infos, nil
	case ProviderHotStorage:
		if accounts == nil {
			panic("accountsdb: CreateFile requires a non-nil accounts batch for ProviderHotStorage")
		}
		infos, err := s.SealTieredFile(slot, id, accounts)
		if err != nil {
			return nil, nil, err
		}
		file, _ := s.Get(slot, id)
		return file, infos, nil
	default:
		panic("accountsdb: unknown ProviderKind")
	}
}

// storableAccountsWithHashesFor picks whichever StorableAccountsWithHashes
// constructor accounts' own HasHash() requires, since AppendAccounts always
// takes the wrapped form but a caller of CreateFile only has a bare
// StorableAccounts batch.
func storableAccountsWithHashesFor(accounts StorableAccounts) *StorableAccountsWithHashes {
	if accounts.HasHash() {
		return NewStorableAccountsWithHashes(accounts)
	}
	hashes := make([]Hash, accounts.Len())
	return NewStorableAccountsWithHashesAndHashes(accounts, hashes)
}

// SealTieredFile writes a Tiered file for (slot, id) from accounts and
// registers it, returning the stored-account-info list SealHotFile
// produced. SealHotFile itself reports reduced IndexOffsets (spec.md
// §4.3); Store stands in for the façade boundary here (Tiered sealing
// never goes through AccountsFile.AppendAccounts, since a Tiered file
// consumes exactly one batch and is never appended to again), so it
// performs the reduced->byte translation spec.md §4.4 assigns to the
// façade before handing offsets back to the caller.
func (s *Store) SealTieredFile(slot Slot, id uint64, accounts StorableAccounts) ([]StoredAccountInfo, error) {
	path := s.path(slot, id)
	infos, err := SealHotFile(path, accounts, s.cfg.Compression)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		infos[i].Offset = fromReduced(uint32(infos[i].Offset))
	}
	hot, err := OpenHotAccountsFile(path)
	if err != nil {
		return nil, err
	}
	s.register(slot, id, NewHotAccountsFile(hot))
	return infos, nil
}

func (s *Store) register(slot Slot, id uint64, file *AccountsFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[FileName(slot, id)] = &storeEntry{slot: slot, id: id, file: file}
}

// Get returns the registered file for (slot, id), if any.
func (s *Store) Get(slot Slot, id uint64) (*AccountsFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.files[FileName(slot, id)]
	if !ok {
		return nil, false
	}
	return e.file, true
}

// ScanIndex walks every registered file and invokes cb for each record,
// in ascending (slot, id) order, logging progress every progressEvery
// files (§11.5). This is the startup path a caller uses to rebuild an
// in-memory accounts index; the index itself is out of scope.
func (s *Store) ScanIndex(progressEvery int, cb func(file *AccountsFile, pubkey Pubkey, offset uint64)) {
	s.mu.RLock()
	entries := make([]*storeEntry, 0, len(s.files))
	for _, e := range s.files {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].slot != entries[j].slot {
			return entries[i].slot < entries[j].slot
		}
		return entries[i].id < entries[j].id
	})

	if progressEvery <= 0 {
		progressEvery = 1
	}
	for i, e := range entries {
		f := e.file
		f.ScanIndex(func(pubkey Pubkey, offset uint64, _ uint64) {
			cb(f, pubkey, offset)
		})
		if (i+1)%progressEvery == 0 {
			log.Info("accountsdb: index scan progress", "files", i+1, "total", len(entries))
		}
	}
	scanFilesMeter.Mark(int64(len(entries)))
}

// Close closes every registered file, returning the first error
// encountered (if any) after attempting to close all of them.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for name, e := range s.files {
		if err := e.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, name)
	}
	return firstErr
}
