// Package s3 keeps volume images in Amazon S3.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "cards", "images/")
//	err = vol.Snapshot(ctx, store, "card.img", memvol.CompressionZSTD)
//
// Put goes through the transfer manager, so large images are uploaded in
// parts. Reads are ranged GETs against the size learned at Open.
package s3
