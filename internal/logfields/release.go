package logfields

import "go.uber.org/zap"

func Channel(val string) zap.Field {
	return zap.String("release.channel", val)
}

func RustVersion(val string) zap.Field {
	return zap.String("release.rust_version", val)
}

func MetadataVersion(val int) zap.Field {
	return zap.Int("release.metadata_version", val)
}
