//go:build windows

package ops

import (
	"os"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// openFileNoFollow opens path for writing. Windows has no O_NOFOLLOW;
// PathPolicy has already rejected symlinks.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("file", path)
		}
		return nil, err
	}
	return f, nil
}
