// Package upload stages, validates and stores image uploads.
//
// WebSocket connections are poor at carrying large binary payloads, so
// files travel over plain HTTP and only their descriptions travel over the
// widget session:
//
//  1. The user picks or drops a file.
//  2. The client POSTs it to the staging endpoint (StageHandler), which
//     streams it into a Store and answers {"temp_id": "..."}.
//  3. The client reports the file to the session with that temp ID. The
//     session resolves it to a StagedFile (Resolver), whose Open reads the
//     staged bytes for the preview.
//  4. The form posts the temp ID in the "image_temp_id" field.
//     SubmitHandler claims the staged blob, re-validates it server-side and
//     hands it to a Sink under a unique name.
//
// # Stores
//
// DiskStore keeps blobs in a local directory with a JSON sidecar per blob.
// S3Store keeps them in a bucket and works with MinIO through a custom
// base endpoint:
//
//	client, err := upload.NewS3Client(ctx, upload.S3Options{
//	    Region:       "us-east-1",
//	    BaseEndpoint: "http://127.0.0.1:9000",
//	    AccessKey:    "minio",
//	    SecretKey:    "minio123",
//	})
//	store := upload.NewS3Store(client, "uploads", "staged/", 10<<20)
//
// Run a Janitor next to either store to drop blobs that were never
// submitted.
//
// # Security
//
// Declared client types are never trusted on submission: the content is
// sniffed and must be JPEG or PNG, the extension must be jpg, jpeg or png,
// and the stored name is sanitized and made unique.
package upload
