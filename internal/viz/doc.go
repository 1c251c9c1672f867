// Package viz styles the terminal output of the delaysim commands: run and
// sweep summaries, sparklines and asciigraph charts.
package viz
