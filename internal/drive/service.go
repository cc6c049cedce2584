package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	sheetsMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Service reads supplier cost lists shared through Google Drive.
type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// ListFiles lists the non-folder files of folderID ("root" when empty).
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='%s'", escapeQuery(folderID), folderMimeType)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		OrderBy("modifiedTime desc")

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, toFile(f))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	return files, nil
}

// FileName returns the display name of fileID.
func (s *Service) FileName(ctx context.Context, fileID string) (string, error) {
	f, err := s.file(ctx, fileID)
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// DownloadFile copies the content of fileID into w. Google Sheets documents
// are exported as XLSX.
func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	f, err := s.file(ctx, fileID)
	if err != nil {
		return err
	}

	var body io.ReadCloser
	if f.MimeType == sheetsMimeType {
		resp, err := s.srv.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
		if err != nil {
			return fmt.Errorf("unable to export file %s: %w", fileID, err)
		}
		body = resp.Body
	} else {
		resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return fmt.Errorf("unable to download file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("unable to read file %s: %w", fileID, err)
	}
	return nil
}

// Fetch downloads fileID into memory and returns it with a file name whose
// extension matches the downloaded content.
func (s *Service) Fetch(ctx context.Context, fileID string) (string, []byte, error) {
	f, err := s.file(ctx, fileID)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := s.DownloadFile(ctx, fileID, &buf); err != nil {
		return "", nil, err
	}

	name := f.Name
	if f.MimeType == sheetsMimeType && !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	return name, buf.Bytes(), nil
}

// FindFolderByPath resolves a slash-separated folder path starting at "root".
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"

	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func (s *Service) file(ctx context.Context, fileID string) (*drive.File, error) {
	f, err := s.srv.Files.Get(fileID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}
	return f, nil
}

func toFile(f *drive.File) *File {
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
	}
}

// escapeQuery escapes a value embedded in a Drive query string literal.
func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
