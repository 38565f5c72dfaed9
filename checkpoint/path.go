package checkpoint

import "path/filepath"

// RecoveryName is the fixed file name of the recovery snapshot inside a checkpoint directory.
const RecoveryName = "recovery"

// Path returns the location of the checkpoint file for a vectors identifier.
func Path(dir, vectorsID string) string {
	return filepath.Join(dir, vectorsID)
}

// RecoveryPath returns the location of the recovery snapshot for a checkpoint directory.
func RecoveryPath(dir string) string {
	return filepath.Join(dir, RecoveryName)
}
