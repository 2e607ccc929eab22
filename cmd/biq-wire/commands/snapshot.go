package commands

import (
	"fmt"
	"io"

	"github.com/qbiq/biq-go/pkg/schema"
	"github.com/qbiq/biq-go/pkg/store"
)

// RunSnapshotExport writes the contents of the database at dbPath to a
// snapshot file.
func RunSnapshotExport(dbPath, output string, w io.Writer) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Export()
	if err != nil {
		return fmt.Errorf("failed to export store: %w", err)
	}
	if err := store.NewSnapshotFile(output).Save(snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	fmt.Fprintf(w, "Exported %d accounts, %d devices, %d groups to %s\n",
		len(snap.Accounts), len(snap.Devices), len(snap.Groups), output)
	return nil
}

// RunSnapshotImport loads a snapshot file into the database at dbPath.
func RunSnapshotImport(dbPath, input string, w io.Writer) error {
	snap, err := store.NewSnapshotFile(input).Load()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("snapshot %s does not exist", input)
	}
	if snap.Version != store.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.Generation > schema.CurrentGeneration {
		return fmt.Errorf("snapshot generation %d is newer than %d", snap.Generation, schema.CurrentGeneration)
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Import(snap); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	fmt.Fprintf(w, "Imported %d accounts, %d devices, %d groups from %s\n",
		len(snap.Accounts), len(snap.Devices), len(snap.Groups), input)
	return nil
}
