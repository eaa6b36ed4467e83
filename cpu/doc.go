// Package cpu implements the LS-8 byte-code machine, its program loader,
// and a small assembler.
//
// The machine has 256 bytes of RAM, eight 8-bit general-purpose registers
// (r0-r7), a program counter, and a descending stack whose pointer lives
// in r7. Programs are loaded at address 0 and run until HLT.
//
// The loader reads LS-8 binary text: one base-2 byte per line, with
// optional '#' comments. The assembler accepts the mnemonic form of the
// same instruction set, with labels, equates, and compile-time $(...)
// expressions.
package cpu
