package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
)

// Chunker splits page text into fixed-size word windows. Consecutive
// windows share overlap words so entity mentions near a boundary land in
// both chunks.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got size=%d overlap=%d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// ChunkPage returns the word windows of a single page. Windows whose
// trimmed text is MinChunkChars or shorter are dropped, they carry too
// little signal to embed.
func (c *Chunker) ChunkPage(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.Join(words[start:end], " ")
		if len(strings.TrimSpace(chunk)) > config.MinChunkChars {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".rtf", ".odt":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX, commonModels.TXT:
		return extractdocxTxtRtf(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// PrepareChunks flattens the pages of a document into chunks with a
// document-global index. Chunk ids are derived from the document id and
// that index, so re-ingesting a document reuses the same ids.
func PrepareChunks(pages []rawPage, doc commonModels.Document, chunker *Chunker) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	chunkIndex := 0
	for _, page := range pages {
		for _, text := range chunker.ChunkPage(page.Content) {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:      doc,
				ChunkId:  ChunkID(doc.Id, chunkIndex),
				Chunk:    text,
				PageNum:  page.Number,
				ChunkNum: chunkIndex,
			})
			chunkIndex++
		}
	}

	return allChunks
}

// ChunkID maps (document id, chunk index) onto a stable UUID usable as a
// vector store point id.
func ChunkID(docID string, index int) string {
	logical := fmt.Sprintf("%s_chunk_%d", docID, index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(logical)).String()
}
