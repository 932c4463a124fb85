// Package config loads dropzone configuration.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (New)
//  2. dropzone.json in the working directory, or the file given with --config
//  3. DROPZONE_* environment variables, with a .env file honoured
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "title": "Upload an image",
//	    "maxSessions": 1000
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "upload": {
//	    "maxFileSizeMB": 10,
//	    "successURL": "/"
//	  },
//	  "store": {
//	    "type": "s3",
//	    "maxAge": "1h",
//	    "s3": {"bucket": "uploads", "region": "us-east-1", "prefix": "staged/"}
//	  },
//	  "sink": {"type": "dir", "dir": "uploads"}
//	}
//
// Every field has an environment counterpart built from its path, for
// example DROPZONE_UPLOAD_MAX_FILE_SIZE_MB or DROPZONE_STORE_S3_BUCKET.
//
// # Usage
//
//	cfg, err := config.Resolve(path, explicit)
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
package config
