package platform

// PackageType is a distributable package archive format.
type PackageType string

const (
	DEB       PackageType = "DEB"
	RPM       PackageType = "RPM"
	TGZ       PackageType = "TGZ"
	NSIS      PackageType = "NSIS"
	ZIP       PackageType = "ZIP"
	DragNDrop PackageType = "DragNDrop"
	APK       PackageType = "APK"
)

// Extension returns the file extension used for the package type, or
// "unknown".
func (t PackageType) Extension() string {
	switch t {
	case DEB:
		return "deb"
	case RPM:
		return "rpm"
	case TGZ:
		return "tar.gz"
	case NSIS:
		return "exe"
	case ZIP:
		return "zip"
	case DragNDrop:
		return "dmg"
	case APK:
		return "apk"
	}
	return "unknown"
}
