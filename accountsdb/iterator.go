package accountsdb

// AccountsFileIter walks an AccountsFile sequentially from its first
// record, calling GetAccount at each step until the first offset that
// yields ok=false (spec.md §4.3).
type AccountsFileIter struct {
	file   *AccountsFile
	offset uint64
	done   bool
}

// NewAccountsFileIter builds an iterator starting at byte offset 0.
func NewAccountsFileIter(file *AccountsFile) *AccountsFileIter {
	return &AccountsFileIter{file: file}
}

// Next returns the next record, or ok=false once the file is exhausted.
// Once ok is false, every subsequent call also returns ok=false.
func (it *AccountsFileIter) Next() (acc StoredAccountMeta, ok bool) {
	if it.done {
		return StoredAccountMeta{}, false
	}
	acc, next, ok := it.file.GetAccount(it.offset)
	if !ok {
		it.done = true
		return StoredAccountMeta{}, false
	}
	it.offset = next
	return acc, true
}
