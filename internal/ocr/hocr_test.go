package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visarchlab/visextract/internal/geometry"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
 <body>
  <div class='ocr_page' id='page_1' title='image ""; bbox 0 0 2000 3000; ppageno 0'>
   <div class='ocr_carea' id='block_1_1' title="bbox 100 100 900 400">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 100 100 900 400">
     <span class='ocr_line' id='line_1_1' title="bbox 100 100 900 130">
      <span class='ocrx_word' id='word_1_1' title='bbox 100 100 260 130; x_wconf 96'>Figure</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 270 100 310 130; x_wconf 95'>1:</span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 100 140 900 170">
      <span class='ocrx_word' id='word_1_3' title='bbox 100 140 400 170; x_wconf 91'>ground</span>
      <span class='ocrx_word' id='word_1_4' title='bbox 410 140 500 170; x_wconf 90'>plan</span>
     </span>
    </p>
   </div>
   <div class='ocr_carea' id='block_1_2' title="bbox 100 500 1500 2400">
    <p class='ocr_par' id='par_1_2' lang='eng' title="bbox 100 500 1500 2400">
     <span class='ocr_line' id='line_1_3' title="bbox 100 500 1500 2400">
      <span class='ocrx_word' id='word_1_5' title='bbox 100 500 1500 2400; x_wconf 95'> </span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseHOCR(t *testing.T) {
	regions, err := ParseHOCR(sampleHOCR)
	require.NoError(t, err)

	require.Len(t, regions.Texts, 1)
	text := regions.Texts[0]
	assert.Equal(t, "par_1_1", text.ID)
	assert.Equal(t, "Figure 1:\nground plan", text.Text)
	assert.Equal(t, geometry.UnitPixels, text.Box.Unit)
	assert.InDelta(t, 100.0, text.Box.X0, 1e-9)
	assert.InDelta(t, 400.0, text.Box.Y1, 1e-9)

	require.Len(t, regions.Images, 1)
	img, ok := regions.Images["par_1_2"]
	require.True(t, ok, "paragraph with only empty words is image-like")
	assert.InDelta(t, 1400.0, img.Width(), 1e-9)
	assert.InDelta(t, 1900.0, img.Height(), 1e-9)
}

func TestParseHOCRNoParagraphs(t *testing.T) {
	regions, err := ParseHOCR(`<html><body><div class='ocr_page'></div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, regions.Images)
	assert.Empty(t, regions.Texts)
}

func TestParseTitleBBox(t *testing.T) {
	box, err := parseTitleBBox("bbox 10 20 110 220; x_wconf 95")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, box.Width(), 1e-9)
	assert.InDelta(t, 200.0, box.Height(), 1e-9)

	_, err = parseTitleBBox("x_wconf 95")
	assert.Error(t, err)
}
