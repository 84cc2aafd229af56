package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Buckets lógicos: replican la separación entre fotos de afiliados y
// comprobantes de pago.
const (
	BucketAffiliatePhotos = "affiliate-photos"
	BucketProofs          = "comprobantes"
	BucketActivityImages  = "activity-images"
)

// Local guarda los archivos en disco y los expone como estáticos bajo /files.
type Local struct {
	Root    string // Carpeta raíz (STORAGE_PATH)
	BaseURL string // URL pública base (PUBLIC_BASE_URL)
}

func NewLocal(root, baseURL string) *Local {
	return &Local{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save escribe el archivo y devuelve su URL pública. No pisa archivos
// existentes: el que nombra tiene que garantizar unicidad (se usan UUIDs).
func (l *Local) Save(bucket, name string, data []byte) (string, error) {
	dir := filepath.Join(l.Root, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("no se pudo crear la carpeta %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("el archivo %s ya existe", name)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("no se pudo guardar el archivo: %w", err)
	}

	return l.PublicURL(bucket, name), nil
}

func (l *Local) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/files/%s/%s", l.BaseURL, bucket, name)
}

// Remove borra un archivo por su URL pública. Se usa al eliminar un afiliado
// para no dejar fotos huérfanas. Ignora archivos que ya no existen.
func (l *Local) Remove(publicURL string) error {
	prefix := l.BaseURL + "/files/"
	if !strings.HasPrefix(publicURL, prefix) {
		return fmt.Errorf("la URL %q no pertenece a este almacenamiento", publicURL)
	}

	rel := strings.TrimPrefix(publicURL, prefix)
	// Evita escapes fuera de la raíz
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("ruta inválida: %q", rel)
	}

	err := os.Remove(filepath.Join(l.Root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
