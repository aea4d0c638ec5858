package printing

// ContractDocument is a generated rental contract. URL is set when the object
// store can link to it directly; otherwise Data carries the PDF
type ContractDocument struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
	PageCount   int    `json:"page_count"`
}

// Stream reports whether the caller must send the bytes itself
func (d *ContractDocument) Stream() bool {
	return d.URL == ""
}
