package assemble

import (
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

type staticCatalog struct{ c *catalog.Catalog }

func (s staticCatalog) Catalog() *catalog.Catalog { return s.c }

func product(id, content string) passage.Passage {
	return passage.Passage{SourceID: id, Content: content, Metadata: passage.Metadata{ContentType: "product"}}
}

func roseCorpus() []passage.Passage {
	return []passage.Passage{
		product("products/dry-rose-2021.md", "# Dry Rosé 2021\nStatus: Sold Out\nStrawberry and citrus."),
		product("products/dry-rose-2022.md", "# Dry Rosé 2022\nStatus: Available\nStrawberry and citrus."),
		product("products/sparkling-rose-nv.md", "# Sparkling Rosé NV\nStatus: Available\nFine bubbles."),
		product("products/rose-of-pinot-noir-2023.md", "# Rosé of Pinot Noir 2023\nStatus: In Stock\nCherry blossom."),
		{
			SourceID: "faq/visiting.md",
			Content:  "# Visiting Us\nThe tasting room pours rosé flights on weekends.",
			Metadata: passage.Metadata{ContentType: "visiting"},
		},
	}
}

func reserveCorpus(available2022 bool) []passage.Passage {
	status2022 := "Sold Out"
	if available2022 {
		status2022 = "Available"
	}
	return []passage.Passage{
		product("products/reserve-cabernet-franc-2019.md", "# Reserve Cabernet Franc 2019\nStatus: Available\nCedar and plum."),
		product("products/reserve-cabernet-franc-2021.md", "# Reserve Cabernet Franc 2021\nStatus: Available\nBlackberry."),
		product("products/reserve-cabernet-franc-2022.md", "# Reserve Cabernet Franc 2022\nStatus: "+status2022+"\nViolet."),
		product("products/cabernet-franc-2021.md", "# Estate Cabernet Franc 2021\nStatus: Available\nRed fruit."),
		product("products/meritage-2020.md", "# Meritage 2020\nStatus: Available\nBlend of cabernet franc and merlot."),
	}
}
