package types

// Config represents one gallery profile configuration
type Config struct {
	// Meta information for the configuration
	Meta struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Enabled     bool   `yaml:"enabled"`
		Template    string `yaml:"template,omitempty"` // Name of the template to use
	} `yaml:"meta"`

	Gallery struct {
		Writer struct {
			// "filesystem", "gdrive" or "s3"
			Type string `yaml:"type"`

			Filesystem struct {
				Root string `yaml:"root"` // defaults to the user home directory
			} `yaml:"filesystem"`

			GDrive struct {
				CredentialsFile string `yaml:"credentials_file"`
				TokenDir        string `yaml:"token_dir"`
				RootFolder      string `yaml:"root_folder"`
				ClientID        string `yaml:"client_id"`
				ClientSecret    string `yaml:"client_secret"`
			} `yaml:"gdrive"`

			S3 struct {
				Endpoint        string `yaml:"endpoint"`
				Region          string `yaml:"region"`
				Bucket          string `yaml:"bucket"`
				AccessKeyID     string `yaml:"access_key_id"`
				SecretAccessKey string `yaml:"secret_access_key"`
				UsePathStyle    bool   `yaml:"use_path_style"`
				KeyPrefix       string `yaml:"key_prefix,omitempty"`
			} `yaml:"s3"`
		} `yaml:"writer"`

		// Quality applied by writers that re-encode image bytes, 0-100.
		Quality int `yaml:"quality"`
		// SkipIfExists turns an already-present destination into a no-op success.
		SkipIfExists bool `yaml:"skip_if_exists"`
		// RelativePath overrides the MIME-derived destination folder when set.
		RelativePath string `yaml:"relative_path,omitempty"`
	} `yaml:"gallery"`

	Staging struct {
		Dir string `yaml:"dir"` // defaults to <tmp>/gallery-bridge
		// MaxAge in hours before the janitor removes a leftover staged file.
		MaxAge int `yaml:"max_age"`
	} `yaml:"staging"`

	Import struct {
		WatchDirs         []string `yaml:"watch_dirs"`
		AllowedTypes      []string `yaml:"allowed_types"`
		MaxSize           int64    `yaml:"max_size"`
		DeleteAfterImport bool     `yaml:"delete_after_import"`
		SanitizeFilenames bool     `yaml:"sanitize_filenames"`
	} `yaml:"import"`

	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		StorageType   string `yaml:"storage_type"` // "file" or "sqlite"
		StoragePath   string `yaml:"storage_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`

	FailLog struct {
		Enabled       bool   `yaml:"enabled"`
		StorageType   string `yaml:"storage_type"` // only "file" for now
		StoragePath   string `yaml:"storage_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"faillog"`

	Logging struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"` // "text", "json" or "dev"
		Output        string `yaml:"output"`
		FilePath      string `yaml:"file_path"`
		IncludeCaller bool   `yaml:"include_caller"`
	} `yaml:"logging"`

	Scheduling struct {
		Enabled         bool   `yaml:"enabled"`
		FrequencyEvery  string `yaml:"frequency_every"` // minute, hour, day, week, month
		FrequencyAmount int    `yaml:"frequency_amount"`
		StartNow        bool   `yaml:"start_now"`
		StartAt         string `yaml:"start_at"` // UTC DateTime
		StopAt          string `yaml:"stop_at"`  // UTC DateTime
	} `yaml:"scheduling"`
}
