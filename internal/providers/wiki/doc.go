// Package wiki implements providers.Scraper for the Punishing: Gray Raven fan
// wiki. The roster comes from the icon grid on the main page; coatings come
// from the tabbed gallery sub-page of each character.
package wiki
