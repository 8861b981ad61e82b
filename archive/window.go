package archive

// Window representa um intervalo contíguo de ids de sequência, 1-based e
// inclusivo, processado como um lote
type Window struct {
	Start uint32
	End   uint32
}

// Size retorna o número de mensagens cobertas pela janela
func (w Window) Size() uint32 {
	return w.End - w.Start + 1
}

// Windows particiona [1, total] em janelas consecutivas de batchSize
// mensagens, sem lacunas nem sobreposição; a última janela pode ser menor.
// Um total zero produz uma sequência vazia.
func Windows(total, batchSize uint32) []Window {
	if total == 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = 1
	}

	windows := make([]Window, 0, (total+batchSize-1)/batchSize)
	for start := uint32(1); start <= total; start += batchSize {
		end := start + batchSize - 1
		if end > total {
			end = total
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows
}
