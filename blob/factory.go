package blob

import (
	"context"
	"fmt"

	"github.com/mealweek/mealweek/config"
)

// OpenFromEnv selects and constructs the blob backend from BLOB_DRIVER
// (fs, s3, memory). Defaults to the filesystem driver.
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := Driver(config.GetEnv("BLOB_DRIVER", string(DriverFilesystem)))
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(
			config.GetEnv("BLOB_FS_ROOT", "./blobdata"),
			config.GetEnv("MEDIA_BASE_URL", "/media"),
		)
	case DriverS3:
		return NewS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
