package storage

// Config holds the file intake policy. It is loaded once at process start
// and treated as read-only afterwards.
type Config struct {
	Driver            string   `env:"STORAGE_DRIVER" envDefault:"local"`                          // Driver selects the backend: "local" or "s3".
	UploadDir         string   `env:"STORAGE_UPLOAD_DIR" envDefault:"uploads"`                    // UploadDir is the directory for the local backend.
	MaxFileSize       int64    `env:"STORAGE_MAX_FILE_SIZE" envDefault:"10485760"`                // MaxFileSize is the upload size cap in bytes (10MB by default).
	AllowedExtensions []string `env:"STORAGE_ALLOWED_EXTENSIONS" envDefault:".jpg,.jpeg,.png"`    // AllowedExtensions lists accepted extensions, leading dot included.
	PurgeOnStartup    bool     `env:"STORAGE_PURGE_ON_STARTUP" envDefault:"false"`                // PurgeOnStartup empties the upload store when the process boots.
}

// S3Config contains the settings for the S3 backend.
type S3Config struct {
	Bucket         string `env:"STORAGE_S3_BUCKET"`
	Region         string `env:"STORAGE_S3_REGION"`
	AccessKeyID    string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"STORAGE_S3_SECRET_KEY"`
	Endpoint       string `env:"STORAGE_S3_ENDPOINT"`         // Optional: for S3-compatible services
	KeyPrefix      string `env:"STORAGE_S3_KEY_PREFIX"`       // Optional: object key namespace inside the bucket
	ForcePathStyle bool   `env:"STORAGE_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
}
