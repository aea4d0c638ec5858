// Package printing renders rental documents to PDF.
//
// The TemplateEngine turns a Contract into HTML using the embedded templates,
// and ChromedpRenderer prints that HTML with headless Chrome:
//
//	html, err := engine.RenderContract(contract)
//	if err != nil {
//	    return err
//	}
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:      html,
//	    Title:     contract.Number,
//	    PaperSize: PaperSizeA4,
//	    Margins:   DefaultMargins(),
//	})
package printing
