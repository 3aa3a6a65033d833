package fwimage

/* GPS datum names indexed by the datum byte of the header */
var datumNames = []string{
	"WGS 84",
	"Tokyo-M",
	"Tokyo-A",
	"User Setting",
	"Adindan",
	"Adindan",
	"Adindan",
	"Adindan",
	"Adindan",
	"Adindan",
	"Adindan",
	"Afgooye",
	"Ain EI Abd 1970",
	"Ain El Abd 1970",
	"American Samoa 1962",
	"Anna 1 Astro 1965",
	"Antigua Island Astro 1943",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1950",
	"Arc1960",
	"Arc1960",
	"Arc1960",
	"Ascension Island 1958",
	"Astro Beacon E 1945",
	"Astro Dos 71/4",
	"Astro Tern Island (FRIG) 1961",
	"Astronomical Station 1952",
	"Australian Geodetic 1966",
	"Australian Geodetic 1984",
	"Ayabelle Lighthouse",
	"Bellevue (IGN)",
	"Bermuda 1957",
	"Bissau",
	"Bogota Observatory",
	"Bukit Rimpah",
	"Camp Area Astro",
	"Campo Inchauspe",
	"Canton Astro 1966",
	"Cape",
	"Cape Canaveral",
	"Carthage",
	"Chatham Island Astro 1971",
	"Chua Astro",
	"Corrego Alegre",
	"Dabola",
	"Deception Island",
	"Djakarta",
	"Dos 1968",
	"Easter Island 1967 Easter Island",
	"Estonia Coordinate System 1937 Estonia",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1950",
	"European 1979",
	"Fort Thomas 1955",
	"Gan 1970",
	"Geodetic Datum 1970",
	"Graciosa Base SW1948",
	"Guam 1963",
	"Gunung Segara",
	"Gux I Astro",
	"Heart North",
	"Hermannskogel Datum",
	"Hjorsey 1955",
	"Hongkong 1963",
	"Hu Tzu Shan",
	"Indian",
	"Indian",
	"Indian",
	"Indian 1954",
	"Indian 1960",
	"Indian 1960",
	"Indian 1975",
	"Indonesian 1974",
	"Ireland 1965",
	"ISTS 061 Astro 1968",
	"ISTS 073 Astro 1969",
	"Johnston Island 1961",
	"Kandawala",
	"Kerguelen Island 1949",
	"Kertau 1948",
	"Kusaie Astro 1951",
	"Korean Geodetic System",
	"LC5 Astro 1961",
	"Leigon",
	"Liberia 1964",
	"Luzon",
	"Luzon",
	"M'Poraloko",
	"Mahe 1971",
	"Massawa",
	"Merchich",
	"Midway Astro 1961",
	"Minna",
	"Minna",
	"Montserrat Island Astro 1958",
	"Nahrwan",
	"Nahrwan",
	"Nahrwan",
	"Naparima BWI",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1927",
	"North American 1983",
	"North American 1983",
	"North American 1983",
	"North American 1983",
	"North American 1983",
	"North American 1983",
	"North Sahara 1959",
	"Observatorio Meteorologico 1939",
	"Old Egyptian 1907",
	"Old Hawaiian",
	"Old Hawaiian",
	"Old Hawaiian",
	"Old Hawaiian",
	"Old Hawaiian",
	"Oman",
	"Ordnance Survey Great Britain 1936",
	"Ordnance Survey Great Britain 1936",
	"Ordnance Survey Great Britain 1936",
	"Ordnance Survey Great Britain 1936",
	"Ordnance Survey Great Britain 1936",
	"Pico de las Nieves",
	"Pitcairn Astro 1967",
	"Point 58",
	"Pointe Noire 1948",
	"Porto Santo 1936",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South American 1956",
	"Provisional South Chilean 1963",
	"Puerto Rico",
	"Pulkovo 1942",
	"Qatar National",
	"Qornoq",
	"Reunion",
	"Rome 1940",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-42 (Pulkovo 1942)",
	"S-JTSK",
	"Santo (Dos) 1965",
	"Sao Braz",
	"Sapper Hill 1943",
	"Schwarzeck",
	"Selvagem Grande 1938",
	"Sierra Leone 1960",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South American 1969",
	"South Asia",
	"Tananarive Observatory 1925",
	"Timbalai 1948",
	"Tokyo",
	"Tokyo",
	"Tokyo",
	"Tokyo",
	"Tristan Astro 1968",
	"Viti Levu 1916",
	"Voirol 1960",
	"Wake Island Astro 1952",
	"Wake-Eniwetok 1960",
	"WGS 1972",
	"WGS 1984",
	"Yacare",
	"Zanderij",
}
