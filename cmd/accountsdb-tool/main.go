// Command accountsdb-tool is a thin operational wrapper around package
// accountsdb: dump, verify, and seal account files from the shell.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/log"
	"github.com/lumeralabs/accountsdb/accountsdb"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "accountsdb-tool",
		Usage: "inspect and build accountsdb files",
		Commands: []*cli.Command{
			dumpCommand,
			verifyCommand,
			sealCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error("accountsdb-tool: fatal", "err", err)
		os.Exit(1)
	}
}

var dumpCommand = &cli.Command{
	Name:      "dump",
	Usage:     "iterate an AppendVec or Tiered file and print every record",
	ArgsUsage: "<path>",
	Action:    runDump,
}

func runDump(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("dump: missing <path>")
	}
	file, err := openForRead(path)
	if err != nil {
		return err
	}
	defer file.Close()

	it := accountsdb.NewAccountsFileIter(file)
	count := 0
	for {
		acc, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("%x lamports=%d owner=%x executable=%v data_len=%d\n",
			acc.Pubkey, acc.Lamports, acc.Owner, acc.Executable, len(acc.Data))
		count++
	}
	fmt.Printf("dumped %d accounts\n", count)
	return nil
}

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "validate an AppendVec's records up to a claimed length",
	ArgsUsage: "<path> <claimed-len>",
	Action:    runVerify,
}

func runVerify(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("verify: usage: verify <path> <claimed-len>")
	}
	path := c.Args().Get(0)
	claimed, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("verify: bad claimed-len: %w", err)
	}
	av, count, err := accountsdb.NewFromFile(path, claimed)
	if err != nil {
		return err
	}
	defer av.Close()
	fmt.Printf("recovered %d of %d claimed bytes (%d well-formed records)\n", av.Len(), claimed, count)
	return nil
}

var sealCommand = &cli.Command{
	Name:      "seal",
	Usage:     "build a Tiered file from a directory of raw account blobs",
	ArgsUsage: "<src-dir> <dest-path>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "compress", Value: true, Usage: "snappy-compress the data block"},
	},
	Action: runSeal,
}

func runSeal(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("seal: usage: seal <src-dir> <dest-path>")
	}
	srcDir := c.Args().Get(0)
	destPath := c.Args().Get(1)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("seal: read %s: %w", srcDir, err)
	}

	var pubkeys []accountsdb.Pubkey
	var accounts []accountsdb.ReadableAccount
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(srcDir + "/" + e.Name())
		if err != nil {
			return fmt.Errorf("seal: read %s: %w", e.Name(), err)
		}
		var pubkey accountsdb.Pubkey
		copy(pubkey[:], []byte(e.Name()))
		pubkeys = append(pubkeys, pubkey)
		accounts = append(accounts, &accountsdb.AccountData{Lamports: 1, Data: data})
	}

	batch := accountsdb.NewStorableAccountsFromPairs(0, pubkeys, accounts, false)
	infos, err := accountsdb.SealHotFile(destPath, batch, c.Bool("compress"))
	if err != nil {
		return err
	}
	fmt.Printf("sealed %d accounts into %s\n", len(infos), destPath)
	return nil
}

func openForRead(path string) (*accountsdb.AccountsFile, error) {
	hot, err := accountsdb.OpenHotAccountsFile(path)
	if err == nil {
		return accountsdb.NewHotAccountsFile(hot), nil
	}
	st, statErr := os.Stat(path)
	if statErr != nil {
		return nil, statErr
	}
	av, _, err := accountsdb.NewFromFile(path, uint64(st.Size()))
	if err != nil {
		return nil, err
	}
	return accountsdb.NewAppendVecFile(av), nil
}
