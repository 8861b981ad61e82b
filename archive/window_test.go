package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindows(t *testing.T) {
	tests := []struct {
		name      string
		total     uint32
		batchSize uint32
		want      []Window
	}{
		{"vazio", 0, 33, nil},
		{"um lote incompleto", 5, 10, []Window{{1, 5}}},
		{"divisão exata", 66, 33, []Window{{1, 33}, {34, 66}}},
		{"último lote menor", 70, 33, []Window{{1, 33}, {34, 66}, {67, 70}}},
		{"lote unitário", 3, 1, []Window{{1, 1}, {2, 2}, {3, 3}}},
		{"batchSize inválido vira 1", 2, 0, []Window{{1, 1}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Windows(tt.total, tt.batchSize))
		})
	}
}

// A partição deve cobrir exatamente [1, total], sem lacunas nem sobreposição
func TestWindows_PartitionProperties(t *testing.T) {
	for total := uint32(0); total <= 50; total++ {
		for batchSize := uint32(1); batchSize <= 10; batchSize++ {
			windows := Windows(total, batchSize)

			if total == 0 {
				require.Empty(t, windows)
				continue
			}

			require.Equal(t, uint32(1), windows[0].Start)
			require.Equal(t, total, windows[len(windows)-1].End)

			var covered uint32
			for i, w := range windows {
				require.LessOrEqual(t, w.Start, w.End)
				if i > 0 {
					require.Equal(t, windows[i-1].End+1, w.Start, "janelas devem ser contíguas")
				}
				if i < len(windows)-1 {
					require.Equal(t, batchSize, w.Size(), "apenas a última janela pode ser menor")
				}
				covered += w.Size()
			}
			require.Equal(t, total, covered)
		}
	}
}
